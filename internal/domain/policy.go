package domain

import "time"

// CancellationPolicy is the stateless gate deciding whether a customer may
// still cancel a booking. It is evaluated against the booking's first slot
// identifier, which the ledger guarantees is the earliest one.
type CancellationPolicy struct {
	Window time.Duration
}

func NewCancellationPolicy(window time.Duration) *CancellationPolicy {
	return &CancellationPolicy{Window: window}
}

// Allowed reports whether cancellation is still permitted at now. The lead
// time must be at least the window: exactly window-before is allowed, one
// minute less is not.
func (p *CancellationPolicy) Allowed(earliestSlotID string, now time.Time) (bool, error) {
	slotTime, err := ParseSlotID(earliestSlotID)
	if err != nil {
		return false, err
	}
	return slotTime.Sub(now) >= p.Window, nil
}
