package usecase

import "time"

// RetryPolicy is exponential backoff with a fixed attempt ceiling. Attempts are 0-based.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Delay is BaseDelay * 2^attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	return p.BaseDelay * time.Duration(int64(1)<<uint(attempt))
}

// IsFinal reports whether a failure of attempt ends the job.
func (p RetryPolicy) IsFinal(attempt int) bool {
	return attempt+1 >= p.MaxAttempts
}
