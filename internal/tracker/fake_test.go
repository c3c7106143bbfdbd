package tracker

import (
	"context"
	"fmt"
	"sync"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/events"
	"jobtracker-engine/internal/remote"
)

// memAdapter is an in-memory remote store with per-operation failures.
type memAdapter struct {
	mu      sync.Mutex
	docs    []domain.Record
	owners  map[string]string
	seq     int
	fail    map[string]error
	calls   []string
	patches []domain.Patch
}

func newMemAdapter() *memAdapter {
	return &memAdapter{owners: map[string]string{}, fail: map[string]error{}}
}

func (m *memAdapter) failOn(op, diag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = &remote.RemoteError{Op: op, Backend: "mem", Message: diag}
}

func (m *memAdapter) record(op string) error {
	m.calls = append(m.calls, op)
	return m.fail[op]
}

func (m *memAdapter) Name() string { return "mem" }

func (m *memAdapter) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.record("ping")
}

func (m *memAdapter) List(_ context.Context, owner string) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("list"); err != nil {
		return nil, err
	}
	var out []domain.Record
	for i := len(m.docs) - 1; i >= 0; i-- {
		if m.owners[m.docs[i].ID] == owner {
			out = append(out, m.docs[i])
		}
	}
	return out, nil
}

func (m *memAdapter) Create(_ context.Context, owner string, in domain.Input) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("create"); err != nil {
		return domain.Record{}, err
	}
	m.seq++
	in.LastContacted = ""
	rec := in.WithID(fmt.Sprintf("doc-%d", m.seq))
	m.docs = append(m.docs, rec)
	m.owners[rec.ID] = owner
	return rec, nil
}

func (m *memAdapter) Update(_ context.Context, owner, id string, p domain.Patch) (domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patches = append(m.patches, p)
	if err := m.record("update"); err != nil {
		return domain.Record{}, err
	}
	for i, d := range m.docs {
		if d.ID == id && m.owners[id] == owner {
			p.LastContacted = nil
			m.docs[i] = p.Apply(d)
			return m.docs[i], nil
		}
	}
	return domain.Record{}, &remote.RemoteError{Op: "update", Backend: "mem", Err: remote.ErrNotFound}
}

func (m *memAdapter) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("delete"); err != nil {
		return err
	}
	for i, d := range m.docs {
		if d.ID == id && m.owners[id] == owner {
			m.docs = append(m.docs[:i], m.docs[i+1:]...)
			return nil
		}
	}
	return &remote.RemoteError{Op: "delete", Backend: "mem", Err: remote.ErrNotFound}
}

func (m *memAdapter) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

// recorder collects notifications.
type recorder struct {
	mu      sync.Mutex
	got     []events.Notification
	changes []string
}

func (r *recorder) Notify(_ context.Context, n events.Notification) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

func (r *recorder) RecordsChanged(_ context.Context, op string) {
	r.mu.Lock()
	r.changes = append(r.changes, op)
	r.mu.Unlock()
}

func (r *recorder) messages(level events.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.got {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}
