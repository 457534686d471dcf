package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"thunderbet_pix_back/internal/deposit"
	"thunderbet_pix_back/models"
	"thunderbet_pix_back/pkg/cache"
	"thunderbet_pix_back/pkg/repository"
	"thunderbet_pix_back/pkg/utils"
)

var (
	ErrNoActiveDeposit = errors.New("no active deposit")
	ErrDepositNotFound = errors.New("deposit not found")
)

// BillingService owns one deposit coordinator per user and the withdrawal
// flow. Coordinators are created lazily and reused across attempts, so
// starting a new deposit supersedes the user's previous one.
type BillingService struct {
	repos    repository.Billing
	gateway  deposit.Gateway
	cfg      Config
	statuses *cache.StatusCache

	mu           sync.Mutex
	coordinators map[int64]*deposit.Coordinator
}

func NewBillingService(repos repository.Billing, gateway deposit.Gateway, cfg Config) *BillingService {
	return &BillingService{
		repos:        repos,
		gateway:      gateway,
		cfg:          cfg,
		statuses:     cache.NewStatusCache(cfg.StatusCacheTTL),
		coordinators: make(map[int64]*deposit.Coordinator),
	}
}

func (s *BillingService) coordinatorFor(user models.User) *deposit.Coordinator {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.coordinators[user.ID]; ok {
		return c
	}

	onPaid := func(a deposit.Attempt) {
		if err := s.repos.ConfirmDepositPaid(a.ChargeID); err != nil {
			logrus.Errorf("failed to confirm paid deposit %s: %s", a.ChargeID, err.Error())
		}
		go utils.NotifyDepositPaid(user.Email, a.RequestedAmount, a.ChargeID)
	}
	onTerminal := func(a deposit.Attempt) {
		if a.ChargeID == "" {
			return
		}
		s.statuses.Forget(a.ChargeID)
		if a.Status == deposit.StatusPaid {
			// Persisted by onPaid.
			return
		}
		if err := s.repos.ResolveDeposit(a.ChargeID, string(a.Status), a.ErrorMessage); err != nil {
			logrus.Errorf("failed to resolve deposit %s as %s: %s", a.ChargeID, a.Status, err.Error())
		}
	}

	c := deposit.NewCoordinator(s.cfg.Deposit, s.gateway, onPaid, onTerminal)
	s.coordinators[user.ID] = c
	return c
}

func (s *BillingService) liveCoordinator(userID int64) (*deposit.Coordinator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coordinators[userID]
	return c, ok
}

// StartDeposit runs the attempt through the user's coordinator and records
// it. If recording fails the attempt is abandoned rather than left
// monitoring a charge the backend has no row for.
func (s *BillingService) StartDeposit(ctx context.Context, user models.User, amount decimal.Decimal) (deposit.Attempt, error) {
	c := s.coordinatorFor(user)

	attempt, err := c.StartDeposit(ctx, amount)
	if err != nil {
		return attempt, err
	}

	if _, err := s.repos.CreateDeposit(user.ID, attempt.ChargeID, amount); err != nil {
		c.CancelMonitoring()
		logrus.Errorf("failed to record deposit for charge %s: %s", attempt.ChargeID, err.Error())
		return deposit.Attempt{}, err
	}
	if attempt.PixCode != "" {
		if err := s.repos.UpdateDepositCode(attempt.ChargeID, attempt.PixCode, attempt.QRCodeURL); err != nil {
			logrus.Errorf("failed to record pix code for charge %s: %s", attempt.ChargeID, err.Error())
		}
	}
	return attempt, nil
}

// DepositStatus reports the state of a deposit. A live attempt is served
// from its coordinator. A chargeID that is no longer live (for instance
// after a restart) is reconciled straight against the gateway, with a
// short-TTL cache absorbing the UI's per-request polling.
func (s *BillingService) DepositStatus(ctx context.Context, userID int64, chargeID string) (models.DepositStatusResponse, error) {
	if c, ok := s.liveCoordinator(userID); ok {
		snap := c.Snapshot()
		if snap.ChargeID != "" && (chargeID == "" || chargeID == snap.ChargeID) {
			if snap.Status == deposit.StatusAwaitingPayment && snap.PixCode != "" {
				if err := s.repos.UpdateDepositCode(snap.ChargeID, snap.PixCode, snap.QRCodeURL); err != nil {
					logrus.Errorf("failed to record pix code for charge %s: %s", snap.ChargeID, err.Error())
				}
			}
			return models.DepositStatusResponse{
				Status:       string(snap.Status),
				PixCode:      snap.PixCode,
				QRCodeURL:    snap.QRCodeURL,
				Amount:       snap.RequestedAmount,
				ErrorMessage: snap.ErrorMessage,
			}, nil
		}
	}

	if chargeID == "" {
		return models.DepositStatusResponse{}, ErrNoActiveDeposit
	}
	return s.reconcileCharge(ctx, userID, chargeID)
}

func (s *BillingService) reconcileCharge(ctx context.Context, userID int64, chargeID string) (models.DepositStatusResponse, error) {
	row, err := s.repos.GetDepositByChargeID(chargeID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DepositStatusResponse{}, ErrDepositNotFound
	}
	if err != nil {
		return models.DepositStatusResponse{}, err
	}
	if row.UserID != userID {
		return models.DepositStatusResponse{}, ErrDepositNotFound
	}

	if deposit.Status(row.Status).Terminal() {
		resp := models.DepositStatusResponse{
			Status:    row.Status,
			PixCode:   row.PixCode,
			QRCodeURL: row.QRCodeURL,
			Amount:    row.Amount,
		}
		if row.ErrorMessage != nil {
			resp.ErrorMessage = *row.ErrorMessage
		}
		return resp, nil
	}

	st, ok := s.statuses.Get(chargeID)
	if !ok {
		st, err = s.gateway.GetChargeStatus(ctx, chargeID)
		if err != nil {
			return models.DepositStatusResponse{}, err
		}
		s.statuses.Set(chargeID, st)
	}

	status := row.Status
	switch st.Status {
	case deposit.GatewayStatusWaiting:
		status = string(deposit.StatusAwaitingPayment)
	case deposit.GatewayStatusPaid:
		status = string(deposit.StatusPaid)
		if err := s.repos.ConfirmDepositPaid(chargeID); err != nil {
			logrus.Errorf("failed to confirm paid deposit %s: %s", chargeID, err.Error())
		}
		s.statuses.Forget(chargeID)
	case deposit.GatewayStatusExpired, deposit.GatewayStatusCancelled:
		status = st.Status
		if err := s.repos.ResolveDeposit(chargeID, st.Status, ""); err != nil {
			logrus.Errorf("failed to resolve deposit %s as %s: %s", chargeID, st.Status, err.Error())
		}
		s.statuses.Forget(chargeID)
	}

	pixCode := row.PixCode
	if st.PixCode != "" {
		pixCode = st.PixCode
	}
	qrCodeURL := row.QRCodeURL
	if st.QRCodeURL != "" {
		qrCodeURL = st.QRCodeURL
	}
	return models.DepositStatusResponse{
		Status:    status,
		PixCode:   pixCode,
		QRCodeURL: qrCodeURL,
		Amount:    row.Amount,
	}, nil
}

func (s *BillingService) CancelMonitoring(userID int64) {
	if c, ok := s.liveCoordinator(userID); ok {
		c.CancelMonitoring()
	}
}

func (s *BillingService) PixCode(userID int64) (string, error) {
	c, ok := s.liveCoordinator(userID)
	if !ok {
		return "", deposit.ErrNoPixCode
	}
	return c.PixCode()
}

func (s *BillingService) Deposits(userID int64) ([]models.Deposit, error) {
	return s.repos.GetDeposits(userID)
}

func (s *BillingService) GetBalance(userID int64) (models.Balance, error) {
	return s.repos.GetBalance(userID)
}
