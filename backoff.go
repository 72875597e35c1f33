package whirr

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffConfig controls the retry policy WorkerLoop applies when a
// Puller call fails with ErrStoreUnavailable (spec §7: "retried with
// bounded exponential backoff by the Worker Loop only for claim_next and
// renew"). It is not a job-retry policy — whirr has no automatic job
// retry; Retry is always an explicit Submission API call.
//
// Setting MaxRetries to 0 means retry indefinitely, with the interval
// capped at MaxInterval — the mode WorkerLoop uses, since a store outage
// should not itself fail jobs.
type BackoffConfig struct {
	MaxRetries          uint32
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

type backoffCounter struct {
	BackoffConfig
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
