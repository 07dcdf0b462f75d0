// internal/ratelimit/pacer.go
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond is the Telegram Bot API ceiling the verification
// loop must stay under.
const DefaultRequestsPerSecond = 15

// Pacer spaces sequential calls to the external provider so that at least
// 1/n seconds pass between two call starts. It is a pure time-gate for a
// single worker, not a semaphore across workers: each run owns its own Pacer.
type Pacer struct {
	limiter *rate.Limiter
	rps     int
}

// New returns a Pacer enforcing n requests per second. Burst 1 means the
// first call goes through immediately and every later call waits out the
// remainder of the interval.
func New(n int) *Pacer {
	if n <= 0 {
		n = DefaultRequestsPerSecond
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(n), 1),
		rps:     n,
	}
}

// Wait blocks until the next provider call is allowed, or until ctx is done.
// Call it only when a call is actually about to be issued; merely scanning a
// batch must not consume the budget.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// RequestsPerSecond exposes the configured ceiling for ETA math.
func (p *Pacer) RequestsPerSecond() int {
	return p.rps
}
