// Package backoff provides delay schedules for retrying RPC calls.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Strategy returns how long to wait after the given attempt failed.
// attempts starts at 1.
type Strategy func(attempts uint) time.Duration

// Constant waits the same interval after every attempt.
func Constant(interval time.Duration) Strategy {
	return func(uint) time.Duration {
		return interval
	}
}

// Exponential waits baseDelay * base^(attempts-1), saturating instead of
// overflowing.
//
// Ex. Exponential(2*time.Second, 3) = 2s, 6s, 18s, 54s, ...
func Exponential(baseDelay time.Duration, base float64) Strategy {
	return func(attempts uint) time.Duration {
		delay := float64(baseDelay) * math.Pow(base, float64(attempts-1))
		if delay >= math.MaxInt64 || math.IsInf(delay, 0) {
			return math.MaxInt64
		}
		return time.Duration(delay)
	}
}

// BinaryExponential doubles the delay after every attempt.
func BinaryExponential(baseDelay time.Duration) Strategy {
	return Exponential(baseDelay, 2)
}

// Capped limits the delay of s to max.
func Capped(s Strategy, max time.Duration) Strategy {
	return func(attempts uint) time.Duration {
		if delay := s(attempts); delay < max {
			return delay
		}
		return max
	}
}

// WithJitter spreads the delay of s uniformly over +/- jitter of its value,
// so a 100ms delay with 0.1 jitter lands between 90ms and 110ms.
func WithJitter(s Strategy, jitter float64) Strategy {
	return func(attempts uint) time.Duration {
		delay := float64(s(attempts))
		return time.Duration(delay * (1 + (rand.Float64()*2-1)*jitter))
	}
}
