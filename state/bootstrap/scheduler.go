package bootstrap

import (
	"math/rand"
	"time"

	"github.com/sasha-s/go-deadlock"
)

// DelayFunc picks the wait before one republication.
type DelayFunc func() time.Duration

// RandomDelay is uniform in [min, max).
func RandomDelay(min, max time.Duration, rng *rand.Rand) DelayFunc {
	mu := &deadlock.Mutex{}
	return func() time.Duration {
		if max <= min {
			return min
		}
		mu.Lock()
		defer mu.Unlock()
		return min + time.Duration(rng.Int63n(int64(max-min)))
	}
}

// Network is the readiness signal of the replication layer.
type Network interface {
	IsBootstrapped() bool
	OnBootstrapped(f func())
}
