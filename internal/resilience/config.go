package resilience

import (
	"time"
)

// UntilSuccess returns a RetryConfig that retries forever at a fixed
// interval. Only context cancellation or a non-retryable error stops it.
func UntilSuccess(interval time.Duration, shouldRetry func(error) bool) RetryConfig {
	if interval <= 0 {
		interval = DefaultRetryConfig().InitialBackoff
	}
	return RetryConfig{
		MaxAttempts:    Unlimited,
		InitialBackoff: interval,
		MaxBackoff:     interval,
		Multiplier:     1,
		JitterFraction: 0,
		ShouldRetry:    shouldRetry,
	}
}
