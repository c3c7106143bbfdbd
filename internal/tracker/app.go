// Package tracker owns the application state of one engine: who is signed
// in, the record store and the list view. Every mutation goes through the
// Coordinator, which decides whether it is mirrored to the remote store.
package tracker

import (
	"context"
	"log"
	"sync"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/events"
	"jobtracker-engine/internal/query"
	"jobtracker-engine/internal/recordstore"
	"jobtracker-engine/internal/remote"
	"jobtracker-engine/internal/session"
)

type Options struct {
	Session session.Provider
	// Adapter is nil when no remote store is configured.
	Adapter     remote.Adapter
	Notifier    events.Notifier
	SeedSamples bool
	PageSize    int
}

type App struct {
	*Coordinator

	session     session.Provider
	adapter     remote.Adapter
	store       *recordstore.Store
	seedSamples bool

	mu   sync.Mutex
	view *query.View
}

// ViewState is what the list screen shows.
type ViewState struct {
	Criteria query.Criteria `json:"criteria"`
	Page     query.Page     `json:"page"`
}

func New(opts Options, copts ...CoordinatorOption) *App {
	if opts.Session == nil {
		opts.Session = session.NewStatic(nil)
	}
	a := &App{
		session:     opts.Session,
		adapter:     opts.Adapter,
		seedSamples: opts.SeedSamples,
		view:        query.NewView(opts.PageSize),
	}
	a.store = recordstore.New(a.initialRecords())
	a.Coordinator = NewCoordinator(a.store, a.resolveSync, opts.Notifier, copts...)
	return a
}

func (a *App) initialRecords() []domain.Record {
	if a.seedSamples {
		return domain.SampleRecords()
	}
	return nil
}

// CurrentUser treats a provider error as signed out.
func (a *App) CurrentUser(ctx context.Context) *session.User {
	u, err := a.session.CurrentUser(ctx)
	if err != nil {
		log.Printf("level=warn msg=\"current user lookup failed\" err=%q", err.Error())
		return nil
	}
	return u
}

func (a *App) resolveSync(ctx context.Context) (remote.Adapter, string, bool) {
	if a.adapter == nil {
		return nil, "", false
	}
	u := a.CurrentUser(ctx)
	if u == nil {
		return nil, "", false
	}
	return a.adapter, u.ID, true
}

// SyncEnabled is true when a remote store is configured and a user is signed in.
func (a *App) SyncEnabled(ctx context.Context) bool {
	_, _, ok := a.resolveSync(ctx)
	return ok
}

// RemoteName is "" in local-only configurations.
func (a *App) RemoteName() string {
	if a.adapter == nil {
		return ""
	}
	return a.adapter.Name()
}

// Start loads the remote list when sync is already enabled, e.g. from a
// restored session.
func (a *App) Start(ctx context.Context) error {
	if !a.SyncEnabled(ctx) {
		log.Printf("level=info msg=\"local-only mode\" records=%d remote=%q", a.store.Len(), a.RemoteName())
		return nil
	}
	n, err := a.Reload(ctx)
	if err != nil {
		return err
	}
	log.Printf("level=info msg=\"loaded remote records\" count=%d remote=%s", n, a.RemoteName())
	return nil
}

func (a *App) SignInURL(state string) (string, error) {
	return a.session.SignInURL(state)
}

// CompleteSignIn finishes sign-in and pulls the user's records.
func (a *App) CompleteSignIn(ctx context.Context, code string) (*session.User, error) {
	u, err := a.session.Complete(ctx, code)
	if err != nil {
		return nil, err
	}
	a.resetView()
	if a.adapter != nil {
		if _, err := a.Reload(ctx); err != nil {
			log.Printf("level=warn msg=\"reload after sign-in failed\" err=%q", err.Error())
		}
	}
	return u, nil
}

// SignOut drops the signed-in user's records from memory.
func (a *App) SignOut(ctx context.Context) {
	a.session.SignOut(ctx)
	if a.adapter != nil {
		_ = a.store.Replace(a.initialRecords())
	}
	a.resetView()
}

func (a *App) Records() []domain.Record {
	return a.store.Snapshot()
}

func (a *App) Get(id string) (domain.Record, bool) {
	return a.store.Get(id)
}

// Query runs the pipeline without touching the stored view.
func (a *App) Query(c query.Criteria, page, pageSize int) query.Page {
	return query.Paginate(query.Filter(a.store.Snapshot(), c), page, pageSize)
}

func (a *App) Stats() query.Summary {
	return query.Stats(a.store.Snapshot())
}

func (a *App) ViewState() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewStateLocked()
}

func (a *App) SetCriteria(c query.Criteria) ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.SetCriteria(c)
	return a.viewStateLocked()
}

func (a *App) NextPage() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.Next(a.store.Snapshot())
	return a.viewStateLocked()
}

func (a *App) PrevPage() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.Prev()
	return a.viewStateLocked()
}

func (a *App) GoToPage(n int) ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.GoTo(a.store.Snapshot(), n)
	return a.viewStateLocked()
}

func (a *App) resetView() {
	a.mu.Lock()
	a.view.Reset()
	a.view.GoTo(nil, 1)
	a.mu.Unlock()
}

// viewStateLocked pulls the page back inside the result when a delete or
// reload shrank it.
func (a *App) viewStateLocked() ViewState {
	records := a.store.Snapshot()
	a.view.GoTo(records, a.view.Page())
	return ViewState{
		Criteria: a.view.Criteria(),
		Page:     a.view.Render(records),
	}
}
