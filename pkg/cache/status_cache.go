package cache

import (
	"sync"
	"time"

	"thunderbet_pix_back/internal/deposit"
)

// CachedStatus is a recently observed gateway status for one charge.
type CachedStatus struct {
	Status    deposit.ChargeStatus
	Timestamp time.Time
}

// StatusCache keeps the last gateway answer per charge id for a short TTL,
// so the UI status endpoint does not hammer the acquirer between
// coordinator poll ticks.
type StatusCache struct {
	mu       sync.Mutex
	statuses map[string]CachedStatus
	ttl      time.Duration
}

func NewStatusCache(ttl time.Duration) *StatusCache {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &StatusCache{
		statuses: make(map[string]CachedStatus),
		ttl:      ttl,
	}
}

// Get returns the cached status for a charge, or false if none is cached
// or the entry has expired.
func (c *StatusCache) Get(chargeID string) (deposit.ChargeStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.statuses[chargeID]
	if !ok {
		return deposit.ChargeStatus{}, false
	}
	if time.Since(entry.Timestamp) > c.ttl {
		delete(c.statuses, chargeID)
		return deposit.ChargeStatus{}, false
	}
	return entry.Status, true
}

// Set stores the latest gateway answer for a charge.
func (c *StatusCache) Set(chargeID string, status deposit.ChargeStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.statuses[chargeID] = CachedStatus{
		Status:    status,
		Timestamp: time.Now(),
	}
}

// Forget drops the cached entry for a charge, used once it is terminal.
func (c *StatusCache) Forget(chargeID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statuses, chargeID)
}
