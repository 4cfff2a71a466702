package notify

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited wraps a Notifier with a token-bucket limiter so a burst of
// lifecycle events can't flood the delivery transport. Send blocks until a
// token is available or the context is cancelled.
type RateLimited struct {
	next    Notifier
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute messages per minute with the given burst.
func NewRateLimited(next Notifier, perMinute int, burst int) *RateLimited {
	if perMinute <= 0 {
		perMinute = 60
	}
	if burst <= 0 {
		burst = perMinute
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
	}
}

func (r *RateLimited) Send(ctx context.Context, m Message) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.next.Send(ctx, m)
}
