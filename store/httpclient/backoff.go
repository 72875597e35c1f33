package httpclient

import (
	"math"
	"math/rand/v2"
	"time"

	"whirr"
)

// backoffCounter mirrors whirr's own unexported backoff helper
// (backoff.go): it cannot be imported across the package boundary, so
// the retry shape is reproduced here against the same exported
// whirr.BackoffConfig.
type backoffCounter struct {
	whirr.BackoffConfig
}

func (bc *backoffCounter) next(attempt uint32) (time.Duration, bool) {
	if bc.MaxRetries > 0 && attempt > bc.MaxRetries {
		return 0, false
	}
	exp := float64(bc.InitialInterval) * math.Pow(bc.Multiplier, float64(attempt-1))
	if exp > float64(bc.MaxInterval) {
		exp = float64(bc.MaxInterval)
	}
	if bc.RandomizationFactor > 0 {
		delta := bc.RandomizationFactor * exp
		minExp := exp - delta
		maxExp := exp + delta
		exp = minExp + rand.Float64()*(maxExp-minExp)
	}
	return time.Duration(exp), true
}
