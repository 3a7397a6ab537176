package analysis

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces provider calls at least interval apart. It is shared by every
// call a Client makes, so concurrent dimensions still respect one rate.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer returns a pacer releasing one call per interval. A zero interval
// disables pacing.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call may start.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
