package query

import (
	"errors"

	"github.com/cenkalti/backoff/v5"
	"go.trai.ch/quill/internal/core/domain"
)

// RetryPolicy decides whether and how failed fetches are retried.
type RetryPolicy struct {
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
	// Retryable classifies a fetch error as transient.
	Retryable func(error) bool
	// BackOff returns the wait strategy for one fetch. Nil retries immediately.
	BackOff func() backoff.BackOff
}

// DefaultRetryPolicy retries once, immediately, on network failures and 5xx responses.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 1,
		Retryable:  IsTransient,
	}
}

// PolicyFromConfig builds a RetryPolicy from the retry section of the config.
func PolicyFromConfig(cfg domain.RetryConfig) RetryPolicy {
	policy := RetryPolicy{
		MaxRetries: cfg.MaxRetries,
		Retryable: func(err error) bool {
			if errors.Is(err, domain.ErrNetwork) {
				return true
			}
			var statusErr *domain.HTTPStatusError
			return errors.As(err, &statusErr) && cfg.RetryableStatus(statusErr.Code)
		},
	}

	switch cfg.Backoff {
	case domain.BackoffConstant:
		interval := cfg.Initial
		policy.BackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(interval) }
	case domain.BackoffExponential:
		initial, maxInterval := cfg.Initial, cfg.Max
		policy.BackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			if initial > 0 {
				b.InitialInterval = initial
			}
			if maxInterval > 0 {
				b.MaxInterval = maxInterval
			}
			return b
		}
	case domain.BackoffNone, "":
	}
	return policy
}

// IsTransient reports whether err is a network failure or a 5xx response.
func IsTransient(err error) bool {
	if errors.Is(err, domain.ErrNetwork) {
		return true
	}
	var statusErr *domain.HTTPStatusError
	return errors.As(err, &statusErr) && statusErr.Transient()
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable == nil {
		return false
	}
	return p.Retryable(err)
}

func (p RetryPolicy) options(notify backoff.Notify) []backoff.RetryOption {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.BackOff != nil {
		b = p.BackOff()
	}
	tries := max(p.MaxRetries, 0) + 1
	return []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(tries)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	}
}

// unwrapPermanent strips the backoff marker from an error returned on the last attempt.
func unwrapPermanent(err error) error {
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Unwrap()
	}
	return err
}
