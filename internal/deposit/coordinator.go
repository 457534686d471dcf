package deposit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrAmountBelowMinimum = errors.New("amount below minimum")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrNoPixCode          = errors.New("pix code not available yet")
)

// Failure messages stored on the attempt when it resolves without payment.
const (
	msgCodeTimeout    = "timed out generating pix code"
	msgConnectionLost = "connection lost"
)

// Payer identifies who the PIX charge is issued against.
type Payer struct {
	Name     string
	Document string
	Email    string
}

// Charge is the gateway's answer to a charge creation request. PixCode may
// be empty: some acquirers generate the copy-paste code asynchronously.
type Charge struct {
	ID        string
	PixCode   string
	QRCodeURL string
	Status    string
}

// ChargeStatus is the gateway's answer to a status query.
type ChargeStatus struct {
	Status    string
	PixCode   string
	QRCodeURL string
}

// Gateway is the outbound contract with the PIX acquirer.
type Gateway interface {
	CreateCharge(ctx context.Context, amountCents int64, payer Payer) (Charge, error)
	GetChargeStatus(ctx context.Context, chargeID string) (ChargeStatus, error)
}

// Attempt is one user-initiated deposit. The Token distinguishes this
// attempt from any that superseded it, so late poll responses for an old
// attempt are never applied.
type Attempt struct {
	Token           uuid.UUID
	ChargeID        string
	RequestedAmount decimal.Decimal
	PixCode         string
	QRCodeURL       string
	Status          Status
	ErrorMessage    string
	CreatedAt       time.Time
	ResolvedAt      time.Time
}

type Config struct {
	MinimumAmount        decimal.Decimal
	CodePollInterval     time.Duration
	CodePollMaxAttempts  int
	StatusPollInterval   time.Duration
	MaxTransientFailures int
}

// PaidFunc is invoked exactly once when an attempt reaches paid,
// carrying the paid amount. It must not block.
type PaidFunc func(attempt Attempt)

// TerminalFunc is invoked once when an attempt reaches any terminal state.
type TerminalFunc func(attempt Attempt)

// Coordinator drives a single deposit attempt from amount entry to a
// terminal state. At most one attempt is live at a time; starting a new
// one cancels all polling for the previous attempt.
type Coordinator struct {
	cfg        Config
	gateway    Gateway
	onPaid     PaidFunc
	onTerminal TerminalFunc

	mu      sync.Mutex
	attempt *Attempt
	stop    chan struct{}
}

func NewCoordinator(cfg Config, gateway Gateway, onPaid PaidFunc, onTerminal TerminalFunc) *Coordinator {
	if cfg.CodePollInterval <= 0 {
		cfg.CodePollInterval = 2 * time.Second
	}
	if cfg.CodePollMaxAttempts <= 0 {
		cfg.CodePollMaxAttempts = 10
	}
	if cfg.StatusPollInterval <= 0 {
		cfg.StatusPollInterval = 4 * time.Second
	}
	if cfg.MaxTransientFailures <= 0 {
		cfg.MaxTransientFailures = 15
	}
	return &Coordinator{
		cfg:        cfg,
		gateway:    gateway,
		onPaid:     onPaid,
		onTerminal: onTerminal,
	}
}

// StartDeposit validates the amount, creates a charge with the gateway and
// begins monitoring it. Any previous attempt is superseded: its polling is
// stopped and late responses for it are discarded.
func (c *Coordinator) StartDeposit(ctx context.Context, amount decimal.Decimal) (Attempt, error) {
	if amount.LessThan(c.cfg.MinimumAmount) {
		return Attempt{}, ErrAmountBelowMinimum
	}

	token := uuid.New()

	c.mu.Lock()
	c.stopLocked()
	c.attempt = &Attempt{
		Token:           token,
		RequestedAmount: amount,
		Status:          StatusCreated,
		CreatedAt:       time.Now(),
	}
	c.mu.Unlock()

	cents := amount.Shift(2).Round(0).IntPart()
	charge, err := c.gateway.CreateCharge(ctx, cents, Payer{})
	if err != nil {
		logrus.Errorf("pix charge creation failed: %s", err.Error())
		c.resolve(token, StatusFailed, ErrGatewayUnavailable.Error())
		return c.Snapshot(), ErrGatewayUnavailable
	}

	c.mu.Lock()
	if c.attempt == nil || c.attempt.Token != token {
		// Superseded while the creation request was in flight.
		c.mu.Unlock()
		return Attempt{}, context.Canceled
	}
	c.attempt.ChargeID = charge.ID
	c.attempt.PixCode = charge.PixCode
	c.attempt.QRCodeURL = charge.QRCodeURL
	stop := make(chan struct{})
	c.stop = stop
	if charge.PixCode != "" {
		c.attempt.Status = StatusAwaitingPayment
		snapshot := *c.attempt
		c.mu.Unlock()
		logrus.Infof("pix charge %s created, awaiting payment", charge.ID)
		go c.runStatusPoll(token, charge.ID, stop)
		return snapshot, nil
	}
	snapshot := *c.attempt
	c.mu.Unlock()
	logrus.Infof("pix charge %s created without code, polling for code", charge.ID)
	go c.runCodePoll(token, charge.ID, stop)
	return snapshot, nil
}

// runCodePoll queries the gateway for the pix code at a fixed interval,
// bounded by the configured attempt budget. The status poll starts only
// after the code poll has fully stopped.
func (c *Coordinator) runCodePoll(token uuid.UUID, chargeID string, stop chan struct{}) {
	ticker := time.NewTicker(c.cfg.CodePollInterval)
	defer ticker.Stop()

	for tries := 0; tries < c.cfg.CodePollMaxAttempts; tries++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		st, err := c.gateway.GetChargeStatus(context.Background(), chargeID)
		select {
		case <-stop:
			// Cancelled while the query was in flight; discard the result.
			return
		default:
		}
		if err != nil {
			logrus.Warnf("pix code poll for charge %s failed: %s", chargeID, err.Error())
			continue
		}
		if st.PixCode == "" {
			continue
		}

		c.mu.Lock()
		if c.attempt == nil || c.attempt.Token != token || c.attempt.Status.Terminal() {
			c.mu.Unlock()
			return
		}
		c.attempt.PixCode = st.PixCode
		if st.QRCodeURL != "" {
			c.attempt.QRCodeURL = st.QRCodeURL
		}
		c.attempt.Status = StatusAwaitingPayment
		c.mu.Unlock()
		logrus.Infof("pix code for charge %s obtained, awaiting payment", chargeID)
		go c.runStatusPoll(token, chargeID, stop)
		return
	}

	c.resolve(token, StatusFailed, msgCodeTimeout)
}

// runStatusPoll queries the payment status at a fixed interval until the
// gateway reports a terminal status or monitoring is cancelled. Queries
// are issued one at a time, so ticks never produce overlapping requests
// for the same attempt.
func (c *Coordinator) runStatusPoll(token uuid.UUID, chargeID string, stop chan struct{}) {
	ticker := time.NewTicker(c.cfg.StatusPollInterval)
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		st, err := c.gateway.GetChargeStatus(context.Background(), chargeID)
		select {
		case <-stop:
			return
		default:
		}
		if err != nil {
			failures++
			logrus.Warnf("pix status poll for charge %s failed (%d consecutive): %s", chargeID, failures, err.Error())
			if failures >= c.cfg.MaxTransientFailures {
				c.resolve(token, StatusFailed, msgConnectionLost)
				return
			}
			continue
		}
		failures = 0

		switch st.Status {
		case GatewayStatusWaiting:
			// still awaiting payment
		case GatewayStatusPaid:
			c.resolve(token, StatusPaid, "")
			return
		case GatewayStatusExpired:
			c.resolve(token, StatusExpired, "")
			return
		case GatewayStatusCancelled:
			c.resolve(token, StatusCancelled, "")
			return
		default:
			logrus.Warnf("pix charge %s reported unknown status %q", chargeID, st.Status)
		}
	}
}

// resolve moves the attempt identified by token into a terminal state.
// It is idempotent: once the attempt is terminal, or if the token no
// longer matches the live attempt, nothing happens and callbacks do not
// fire again.
func (c *Coordinator) resolve(token uuid.UUID, status Status, errMsg string) {
	c.mu.Lock()
	if c.attempt == nil || c.attempt.Token != token || c.attempt.Status.Terminal() {
		c.mu.Unlock()
		return
	}
	c.attempt.Status = status
	c.attempt.ErrorMessage = errMsg
	c.attempt.ResolvedAt = time.Now()
	snapshot := *c.attempt
	c.stopLocked()
	c.mu.Unlock()

	if status == StatusPaid {
		logrus.Infof("pix charge %s paid, amount %s", snapshot.ChargeID, snapshot.RequestedAmount.StringFixed(2))
		if c.onPaid != nil {
			c.onPaid(snapshot)
		}
	} else if errMsg != "" {
		logrus.Infof("pix attempt for charge %s resolved %s: %s", snapshot.ChargeID, status, errMsg)
	} else {
		logrus.Infof("pix attempt for charge %s resolved %s", snapshot.ChargeID, status)
	}
	if c.onTerminal != nil {
		c.onTerminal(snapshot)
	}
}

// CancelMonitoring stops any active polling without changing the attempt
// status. Safe to call repeatedly and from any state.
func (c *Coordinator) CancelMonitoring() {
	c.mu.Lock()
	c.stopLocked()
	c.mu.Unlock()
}

func (c *Coordinator) stopLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// PixCode returns the copy-paste payment string, or ErrNoPixCode if the
// gateway has not produced one yet.
func (c *Coordinator) PixCode() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt == nil || c.attempt.PixCode == "" {
		return "", ErrNoPixCode
	}
	return c.attempt.PixCode, nil
}

// Snapshot returns a copy of the current attempt. The zero Attempt means
// no deposit has been started yet.
func (c *Coordinator) Snapshot() Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempt == nil {
		return Attempt{}
	}
	return *c.attempt
}
