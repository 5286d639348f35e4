// Package pacing spaces out requests to the listing site.
package pacing

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a minimum interval between operations plus a random jitter.
// A zero-value or nil Pacer does not wait.
type Pacer struct {
	mu     sync.Mutex
	lim    *rate.Limiter
	jitter time.Duration
	rnd    func(n int64) int64
}

// New returns a Pacer allowing one operation per interval, delayed by up to
// jitter extra. A non-positive interval disables the limiter.
func New(interval, jitter time.Duration) *Pacer {
	p := &Pacer{jitter: jitter, rnd: rand.Int64N}
	if interval > 0 {
		p.lim = rate.NewLimiter(rate.Every(interval), 1)
	}
	return p
}

// Wait blocks until the next operation may start or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return ctx.Err()
	}
	if err := Sleep(ctx, p.nextJitter()); err != nil {
		return err
	}
	if p.lim == nil {
		return ctx.Err()
	}
	return p.lim.Wait(ctx)
}

func (p *Pacer) nextJitter() time.Duration {
	if p.jitter <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return time.Duration(p.rnd(int64(p.jitter)))
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
