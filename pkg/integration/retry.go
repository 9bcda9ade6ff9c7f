package integration

import (
	"context"
	"time"
)

// RetryPolicy controls the retry loop. The zero value is not usable;
// start from DefaultRetryPolicy.
type RetryPolicy struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	RetryableKinds    []Kind
	// OnRetry is invoked before each wait with the 1-based attempt
	// number and the classified failure.
	OnRetry func(attempt int, err *Error)
}

// DefaultRetryPolicy retries transient failures up to three times with
// exponential backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		InitialDelay:      1 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2,
		RetryableKinds: []Kind{
			KindNetworkError,
			KindTimeout,
			KindRateLimit,
			KindServerError,
		},
	}
}

func (p RetryPolicy) retryable(kind Kind) bool {
	for _, k := range p.RetryableKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Retry executes op, retrying classified transient failures per the
// policy. A failure whose kind is not in the retryable set, or the
// failure of the final attempt, is returned as the classified *Error.
// The classifier-suggested delay always wins over the computed
// exponential delay for that attempt. Retry performs no I/O itself.
func Retry[T any](ctx context.Context, op func() (T, error), policy RetryPolicy) (T, error) {
	var zero T
	var lastErr *Error
	delay := policy.InitialDelay

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}

		lastErr = Classify(err)
		if !policy.retryable(lastErr.Kind) || attempt == policy.MaxRetries {
			return zero, lastErr
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, lastErr)
		}

		wait := delay
		if lastErr.RetryDelay > 0 {
			wait = lastErr.RetryDelay
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, lastErr
		}

		delay = time.Duration(float64(delay) * policy.BackoffMultiplier)
		if delay > policy.MaxDelay {
			delay = policy.MaxDelay
		}
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
