// Package retry runs idempotent actions, such as RPC reads, until they
// succeed or a strategy gives up.
package retry

import (
	"errors"
	"time"

	"github.com/code-payments/pnft-transfer/pkg/retry/backoff"
)

// Action is the unit of work being retried.
type Action func() error

// Strategy decides whether another attempt should be made after the given
// number of attempts failed with err. Strategies may sleep.
type Strategy func(attempts uint, err error) bool

// Retrier retries actions with a fixed set of strategies.
type Retrier interface {
	Retry(action Action) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier applying strategies in order. With no
// strategies the action is retried until it succeeds.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{strategies: strategies}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

// Retry runs action until it returns nil or a strategy declines another
// attempt. It returns the number of attempts made and the last error.
//
// Strategies that sleep should come last, so no delay is taken before a
// filtering strategy rejects the error.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil {
			return attempts, nil
		}

		for _, s := range strategies {
			if !s(attempts, err) {
				return attempts, err
			}
		}
	}
}

// Limit stops after maxAttempts attempts, including the first one.
func Limit(maxAttempts uint) Strategy {
	return func(attempts uint, _ error) bool {
		return attempts < maxAttempts
	}
}

// RetriableErrors only retries errors matching one of errs.
func RetriableErrors(errs ...error) Strategy {
	return func(_ uint, err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return true
			}
		}
		return false
	}
}

// NonRetriableErrors retries anything except errors matching one of errs.
func NonRetriableErrors(errs ...error) Strategy {
	return func(_ uint, err error) bool {
		for _, e := range errs {
			if errors.Is(err, e) {
				return false
			}
		}
		return true
	}
}

// Backoff sleeps for the delay s schedules after each failed attempt.
func Backoff(s backoff.Strategy) Strategy {
	return func(attempts uint, _ error) bool {
		sleeperImpl.Sleep(s(attempts))
		return true
	}
}

type sleeper interface {
	Sleep(time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration) { time.Sleep(d) }

var sleeperImpl sleeper = realSleeper{}
