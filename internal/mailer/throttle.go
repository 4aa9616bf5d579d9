package mailer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttled spaces sends at least interval apart
type Throttled struct {
	next    Sender
	limiter *rate.Limiter
}

// NewThrottled wraps next. An interval of zero disables throttling.
func NewThrottled(next Sender, interval time.Duration) *Throttled {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Send waits for its turn, then forwards the message
func (t *Throttled) Send(ctx context.Context, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.Send(ctx, msg)
}

var _ Sender = (*Throttled)(nil)
