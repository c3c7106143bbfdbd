package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/events"
	"jobtracker-engine/internal/recordstore"
	"jobtracker-engine/internal/remote"
)

var (
	ErrNotFound     = errors.New("application not found")
	ErrSyncDisabled = errors.New("remote sync is not enabled")
)

// Fallback diagnostics when the remote store gives no message.
const (
	createFallback = "Please check collection permissions and required fields."
	editFallback   = "Please check that all required fields are filled."
)

// SyncResolver reports where mutations are mirrored. ok is false in
// local-only mode.
type SyncResolver func(ctx context.Context) (ad remote.Adapter, owner string, ok bool)

// changeNotifier is implemented by notifiers that also push list refreshes.
type changeNotifier interface {
	RecordsChanged(ctx context.Context, op string)
}

// Coordinator runs create, status change, edit and delete against the
// record store and, while sync is enabled, the remote store. A failed
// remote create is a hard failure; every other failed remote call still
// applies the change locally.
type Coordinator struct {
	store  *recordstore.Store
	sync   SyncResolver
	notify events.Notifier
	now    func() time.Time
	newID  func() string
}

type CoordinatorOption func(*Coordinator)

func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.now = now }
}

func WithIDGenerator(gen func() string) CoordinatorOption {
	return func(c *Coordinator) { c.newID = gen }
}

func NewCoordinator(store *recordstore.Store, sync SyncResolver, n events.Notifier, opts ...CoordinatorOption) *Coordinator {
	if sync == nil {
		sync = func(context.Context) (remote.Adapter, string, bool) { return nil, "", false }
	}
	if n == nil {
		n = events.HubNotifier{}
	}
	c := &Coordinator{
		store:  store,
		sync:   sync,
		notify: n,
		now:    time.Now,
		newID:  LocalID,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// LocalID returns a random UUID, or job-<unix nanos> if the random source fails.
func LocalID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("job-%d", time.Now().UnixNano())
	}
	return id.String()
}

func (c *Coordinator) today() domain.Date {
	return domain.DateOf(c.now())
}

func (c *Coordinator) success(ctx context.Context, op, msg string) {
	c.notify.Notify(ctx, events.Notification{Level: events.LevelSuccess, Message: msg})
	if cn, ok := c.notify.(changeNotifier); ok {
		cn.RecordsChanged(ctx, op)
	}
}

func (c *Coordinator) failure(ctx context.Context, msg string) {
	c.notify.Notify(ctx, events.Notification{Level: events.LevelError, Message: msg})
}

func withDiagnostic(prefix string, err error, fallback string) string {
	if d := remote.Diagnostic(err); d != "" {
		return prefix + " " + d
	}
	return prefix + " " + fallback
}

func (c *Coordinator) Create(ctx context.Context, in domain.Input) (domain.Record, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Record{}, err
	}

	if ad, owner, ok := c.sync(ctx); ok {
		// The remote store never receives LastContacted on create.
		rec, err := ad.Create(ctx, owner, in)
		if err != nil {
			c.failure(ctx, withDiagnostic("Unable to create job in remote store.", err, createFallback))
			return domain.Record{}, fmt.Errorf("create application: %w", err)
		}
		if err := c.store.Prepend(rec); err != nil {
			return domain.Record{}, fmt.Errorf("create application: %w", err)
		}
		c.success(ctx, "create", "Job application added: "+rec.Company)
		return rec, nil
	}

	rec := in.WithID(c.newID())
	if err := c.store.Prepend(rec); err != nil {
		return domain.Record{}, fmt.Errorf("create application: %w", err)
	}
	c.success(ctx, "create", "Job application added: "+rec.Company)
	return rec, nil
}

// ChangeStatus sets the status and stamps LastContacted with today. A remote
// failure is logged only; the local change always applies.
func (c *Coordinator) ChangeStatus(ctx context.Context, id string, st domain.Status) (domain.Record, error) {
	if !st.Valid() {
		return domain.Record{}, &domain.ValidationError{Fields: []string{"status"}}
	}
	if _, ok := c.store.Get(id); !ok {
		return domain.Record{}, ErrNotFound
	}
	today := c.today()
	local := func(r domain.Record) domain.Record {
		r.Status = st
		r.LastContacted = today
		return r
	}

	if ad, owner, ok := c.sync(ctx); ok {
		updated, err := ad.Update(ctx, owner, id, domain.Patch{Status: &st, LastContacted: &today})
		if err == nil {
			if updated.LastContacted.IsZero() {
				updated.LastContacted = today
			}
			local = func(domain.Record) domain.Record { return updated }
		} else {
			log.Printf("level=warn msg=\"remote status update failed, applied locally\" id=%s err=%q", id, err.Error())
		}
	}

	rec, ok := c.store.Update(id, local)
	if !ok {
		// Removed while the remote call was in flight.
		return domain.Record{}, ErrNotFound
	}
	c.success(ctx, "status", "Status updated to "+string(st))
	return rec, nil
}

// Edit replaces every field of the record. A remote failure is reported to
// the user and the local change still applies.
func (c *Coordinator) Edit(ctx context.Context, id string, in domain.Input) (domain.Record, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Record{}, err
	}
	if _, ok := c.store.Get(id); !ok {
		return domain.Record{}, ErrNotFound
	}
	next := in.WithID(id)

	if ad, owner, ok := c.sync(ctx); ok {
		updated, err := ad.Update(ctx, owner, id, domain.PatchFrom(in))
		if err != nil {
			c.failure(ctx, withDiagnostic("Unable to update job in remote store.", err, editFallback))
		} else {
			if updated.LastContacted.IsZero() {
				updated.LastContacted = in.LastContacted
			}
			next = updated
		}
	}

	rec, ok := c.store.Update(id, func(domain.Record) domain.Record { return next })
	if !ok {
		return domain.Record{}, ErrNotFound
	}
	c.success(ctx, "edit", "Job application updated: "+rec.Company)
	return rec, nil
}

// Delete removes the record locally whatever the remote outcome. Deleting an
// id the store does not hold is a no-op and never reaches the remote store.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	if _, ok := c.store.Get(id); !ok {
		return nil
	}
	if ad, owner, ok := c.sync(ctx); ok {
		if err := ad.Delete(ctx, owner, id); err != nil {
			c.failure(ctx, "Unable to delete job from remote store.")
			log.Printf("level=warn msg=\"remote delete failed, removed locally\" id=%s err=%q", id, err.Error())
		}
	}

	if removed, ok := c.store.Remove(id); ok {
		c.success(ctx, "delete", "Job application deleted: "+removed.Company)
	}
	return nil
}

// Reload replaces the store with the remote list.
func (c *Coordinator) Reload(ctx context.Context) (int, error) {
	ad, owner, ok := c.sync(ctx)
	if !ok {
		return 0, ErrSyncDisabled
	}
	recs, err := ad.List(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("reload applications: %w", err)
	}
	if err := c.store.Replace(recs); err != nil {
		return 0, fmt.Errorf("reload applications: %w", err)
	}
	if cn, ok := c.notify.(changeNotifier); ok {
		cn.RecordsChanged(ctx, "reload")
	}
	return len(recs), nil
}
