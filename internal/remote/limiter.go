package remote

import (
	"context"

	"golang.org/x/time/rate"

	"jobtracker-engine/internal/domain"
)

// Limited rate-limits every call to the wrapped adapter. Document stores
// like Notion reject bursts, so calls wait for a token instead of failing.
type Limited struct {
	next Adapter
	lim  *rate.Limiter
}

// NewLimited wraps next. reqPerSec <= 0 disables limiting.
func NewLimited(next Adapter, reqPerSec float64, burst int) *Limited {
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Inf, burst)
	if reqPerSec > 0 {
		lim = rate.NewLimiter(rate.Limit(reqPerSec), burst)
	}
	return &Limited{next: next, lim: lim}
}

func (l *Limited) wait(ctx context.Context, op string) error {
	if err := l.lim.Wait(ctx); err != nil {
		return &RemoteError{Op: op, Backend: l.next.Name(), Message: "rate limiter", Err: err}
	}
	return nil
}

func (l *Limited) Name() string { return l.next.Name() }

func (l *Limited) Ping(ctx context.Context) error {
	if err := l.wait(ctx, "ping"); err != nil {
		return err
	}
	return l.next.Ping(ctx)
}

func (l *Limited) List(ctx context.Context, owner string) ([]domain.Record, error) {
	if err := l.wait(ctx, "list"); err != nil {
		return nil, err
	}
	return l.next.List(ctx, owner)
}

func (l *Limited) Create(ctx context.Context, owner string, in domain.Input) (domain.Record, error) {
	if err := l.wait(ctx, "create"); err != nil {
		return domain.Record{}, err
	}
	return l.next.Create(ctx, owner, in)
}

func (l *Limited) Update(ctx context.Context, owner, id string, p domain.Patch) (domain.Record, error) {
	if err := l.wait(ctx, "update"); err != nil {
		return domain.Record{}, err
	}
	return l.next.Update(ctx, owner, id, p)
}

func (l *Limited) Delete(ctx context.Context, owner, id string) error {
	if err := l.wait(ctx, "delete"); err != nil {
		return err
	}
	return l.next.Delete(ctx, owner, id)
}
