package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thunderbet_pix_back/internal/deposit"
	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/repository"
	"thunderbet_pix_back/pkg/service"
)

type fakeBillingRepo struct {
	mu sync.Mutex

	deposits      map[string]*models.Deposit
	balance       decimal.Decimal
	confirmCalls  int
	withdrawals   []models.Withdrawal
	nextDepositID int64
}

func newFakeBillingRepo() *fakeBillingRepo {
	return &fakeBillingRepo{
		deposits: make(map[string]*models.Deposit),
		balance:  decimal.NewFromInt(100),
	}
}

func (r *fakeBillingRepo) GetBalance(userID int64) (models.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return models.Balance{UserID: userID, Amount: r.balance}, nil
}

func (r *fakeBillingRepo) CreateDeposit(userID int64, chargeID string, amount decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextDepositID++
	r.deposits[chargeID] = &models.Deposit{
		ID:       r.nextDepositID,
		UserID:   userID,
		ChargeID: chargeID,
		Amount:   amount,
		Status:   "created",
	}
	return r.nextDepositID, nil
}

func (r *fakeBillingRepo) UpdateDepositCode(chargeID, pixCode, qrCodeURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deposits[chargeID]; ok && d.ResolvedAt == nil {
		d.PixCode = pixCode
		d.QRCodeURL = qrCodeURL
		d.Status = "awaiting_payment"
	}
	return nil
}

func (r *fakeBillingRepo) ResolveDeposit(chargeID, status, errorMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deposits[chargeID]; ok && d.ResolvedAt == nil {
		now := time.Now()
		d.Status = status
		d.ResolvedAt = &now
		if errorMessage != "" {
			d.ErrorMessage = &errorMessage
		}
	}
	return nil
}

func (r *fakeBillingRepo) ConfirmDepositPaid(chargeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deposits[chargeID]
	if !ok || d.Status == "paid" {
		return nil
	}
	r.confirmCalls++
	now := time.Now()
	d.Status = "paid"
	d.ResolvedAt = &now
	r.balance = r.balance.Add(d.Amount)
	return nil
}

func (r *fakeBillingRepo) GetDeposits(userID int64) ([]models.Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Deposit
	for _, d := range r.deposits {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeBillingRepo) GetDepositByChargeID(chargeID string) (models.Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deposits[chargeID]; ok {
		return *d, nil
	}
	return models.Deposit{}, sql.ErrNoRows
}

func (r *fakeBillingRepo) CreateWithdrawal(userID int64, pixKey string, amount decimal.Decimal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.balance.LessThan(amount) {
		return 0, repository.ErrInsufficientBalance
	}
	r.balance = r.balance.Sub(amount)
	r.withdrawals = append(r.withdrawals, models.Withdrawal{
		ID:     int64(len(r.withdrawals) + 1),
		UserID: userID,
		PixKey: pixKey,
		Amount: amount,
		Status: "pending",
	})
	return int64(len(r.withdrawals)), nil
}

func (r *fakeBillingRepo) GetWithdrawals(userID int64) ([]models.Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Withdrawal(nil), r.withdrawals...), nil
}

func (r *fakeBillingRepo) confirmCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.confirmCalls
}

func (r *fakeBillingRepo) depositStatus(chargeID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.deposits[chargeID]; ok {
		return d.Status
	}
	return ""
}

type scriptedGateway struct {
	mu          sync.Mutex
	statusCalls int
	charge      deposit.Charge
	statusFn    func(call int) (deposit.ChargeStatus, error)
}

func (g *scriptedGateway) CreateCharge(context.Context, int64, deposit.Payer) (deposit.Charge, error) {
	return g.charge, nil
}

func (g *scriptedGateway) GetChargeStatus(_ context.Context, _ string) (deposit.ChargeStatus, error) {
	g.mu.Lock()
	g.statusCalls++
	call := g.statusCalls
	g.mu.Unlock()
	if g.statusFn == nil {
		return deposit.ChargeStatus{Status: deposit.GatewayStatusWaiting}, nil
	}
	return g.statusFn(call)
}

func (g *scriptedGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusCalls
}

func testServiceConfig() service.Config {
	return service.Config{
		Deposit: deposit.Config{
			MinimumAmount:        decimal.NewFromInt(1),
			CodePollInterval:     5 * time.Millisecond,
			CodePollMaxAttempts:  4,
			StatusPollInterval:   5 * time.Millisecond,
			MaxTransientFailures: 3,
		},
		WithdrawMinimum: decimal.NewFromInt(50),
		StatusCacheTTL:  time.Minute,
	}
}

func testUser() models.User {
	return models.User{ID: 7, Email: "maria@example.com", Name: "Maria"}
}

func TestStartDepositPersistsAndCreditsOnPaid(t *testing.T) {
	repo := newFakeBillingRepo()
	gw := &scriptedGateway{
		charge: deposit.Charge{ID: "tx_1", PixCode: "00020126br", QRCodeURL: "https://acq.test/qr"},
		statusFn: func(int) (deposit.ChargeStatus, error) {
			return deposit.ChargeStatus{Status: deposit.GatewayStatusPaid}, nil
		},
	}
	s := service.NewBillingService(repo, gw, testServiceConfig())

	attempt, err := s.StartDeposit(context.Background(), testUser(), decimal.RequireFromString("50.00"))
	require.NoError(t, err)
	assert.Equal(t, deposit.StatusAwaitingPayment, attempt.Status)
	assert.Equal(t, "awaiting_payment", repo.depositStatus("tx_1"))

	require.Eventually(t, func() bool {
		return repo.depositStatus("tx_1") == "paid"
	}, 2*time.Second, time.Millisecond)

	// Balance credited exactly once even though the poll keeps observing paid.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, repo.confirmCount())
	balance, err := s.GetBalance(7)
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(decimal.NewFromInt(150)), "got %s", balance.Amount)
}

func TestDepositStatusReconcilesStaleCharge(t *testing.T) {
	repo := newFakeBillingRepo()
	_, err := repo.CreateDeposit(7, "tx_old", decimal.NewFromInt(25))
	require.NoError(t, err)

	gw := &scriptedGateway{
		statusFn: func(int) (deposit.ChargeStatus, error) {
			return deposit.ChargeStatus{Status: deposit.GatewayStatusWaiting, PixCode: "00020126br"}, nil
		},
	}
	s := service.NewBillingService(repo, gw, testServiceConfig())

	status, err := s.DepositStatus(context.Background(), 7, "tx_old")
	require.NoError(t, err)
	assert.Equal(t, "awaiting_payment", status.Status)
	assert.Equal(t, "00020126br", status.PixCode)

	// Second lookup inside the TTL is served from the cache.
	_, err = s.DepositStatus(context.Background(), 7, "tx_old")
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls())
}

func TestDepositStatusReconcilePaidCreditsOnce(t *testing.T) {
	repo := newFakeBillingRepo()
	_, err := repo.CreateDeposit(7, "tx_paid", decimal.NewFromInt(30))
	require.NoError(t, err)

	gw := &scriptedGateway{
		statusFn: func(int) (deposit.ChargeStatus, error) {
			return deposit.ChargeStatus{Status: deposit.GatewayStatusPaid}, nil
		},
	}
	s := service.NewBillingService(repo, gw, testServiceConfig())

	status, err := s.DepositStatus(context.Background(), 7, "tx_paid")
	require.NoError(t, err)
	assert.Equal(t, "paid", status.Status)
	assert.Equal(t, 1, repo.confirmCount())

	// A terminal row is served from the database without touching the gateway.
	status, err = s.DepositStatus(context.Background(), 7, "tx_paid")
	require.NoError(t, err)
	assert.Equal(t, "paid", status.Status)
	assert.Equal(t, 1, gw.calls())
	assert.Equal(t, 1, repo.confirmCount())
}

func TestDepositStatusRejectsForeignCharge(t *testing.T) {
	repo := newFakeBillingRepo()
	_, err := repo.CreateDeposit(99, "tx_other", decimal.NewFromInt(10))
	require.NoError(t, err)

	gw := &scriptedGateway{statusFn: func(int) (deposit.ChargeStatus, error) {
		return deposit.ChargeStatus{Status: deposit.GatewayStatusWaiting}, nil
	}}
	s := service.NewBillingService(repo, gw, testServiceConfig())

	_, err = s.DepositStatus(context.Background(), 7, "tx_other")
	assert.ErrorIs(t, err, service.ErrDepositNotFound)
	assert.Zero(t, gw.calls())
}

func TestWithdrawMinimumIndependentOfDeposit(t *testing.T) {
	repo := newFakeBillingRepo()
	gw := &scriptedGateway{}
	s := service.NewBillingService(repo, gw, testServiceConfig())

	// Valid for a deposit, but below the withdrawal minimum.
	_, err := s.Withdraw(testUser(), models.WithdrawInput{
		Amount: decimal.RequireFromString("49.99"),
		PixKey: "maria@example.com",
	})
	assert.ErrorIs(t, err, service.ErrWithdrawBelowMinimum)

	id, err := s.Withdraw(testUser(), models.WithdrawInput{
		Amount: decimal.NewFromInt(50),
		PixKey: "maria@example.com",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, id)

	balance, err := s.GetBalance(7)
	require.NoError(t, err)
	assert.True(t, balance.Amount.Equal(decimal.NewFromInt(50)))
}
