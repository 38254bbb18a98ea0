package insight

import "time"

// RetryPolicy is the exponential backoff applied at the vision model boundary.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// Delay returns the wait before retrying after the given zero-based attempt:
// BaseDelay * Multiplier^attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay)
	for i := 0; i < attempt; i++ {
		delay *= p.Multiplier
	}
	return time.Duration(delay)
}
