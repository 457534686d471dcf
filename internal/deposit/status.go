package deposit

// Status is the lifecycle state of a single deposit attempt.
type Status string

const (
	StatusCreated         Status = "created"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaid            Status = "paid"
	StatusExpired         Status = "expired"
	StatusCancelled       Status = "cancelled"
	StatusFailed          Status = "failed"
)

// Terminal reports whether no further transition can occur from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusPaid, StatusExpired, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// Gateway-reported charge statuses.
const (
	GatewayStatusWaiting   = "waiting_payment"
	GatewayStatusPaid      = "paid"
	GatewayStatusExpired   = "expired"
	GatewayStatusCancelled = "cancelled"
)
