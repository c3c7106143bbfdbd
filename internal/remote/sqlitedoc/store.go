// Package sqlitedoc is a remote document store kept in a SQLite file.
// Every document carries its owner and every statement is scoped by it,
// which is the whole permission model: a user only ever sees, updates or
// deletes documents they created.
package sqlitedoc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtracker-engine/internal/domain"
	"jobtracker-engine/internal/remote"
)

const backend = "sqlite"

const selectCols = `id, company, role, work_type, city, status, applied_date, source, link, notes, contact`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens (creating if needed) the store at path and migrates it.
func Open(path string, opts ...Option) (*Store, error) {
	pool, err := openPool(path)
	if err != nil {
		return nil, &remote.RemoteError{Op: "open", Backend: backend, Err: err}
	}
	s := &Store{db: pool, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Name() string { return backend }

func (s *Store) Ping(ctx context.Context) error {
	return remote.Wrap(backend, "ping", s.db.PingContext(ctx))
}

func (s *Store) List(ctx context.Context, owner string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+selectCols+`
FROM documents
WHERE owner = ?
ORDER BY created_at DESC, seq DESC;
`, owner)
	if err != nil {
		return nil, remote.Wrap(backend, "list", err)
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, remote.Wrap(backend, "list", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, remote.Wrap(backend, "list", err)
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, owner string, in domain.Input) (domain.Record, error) {
	if strings.TrimSpace(owner) == "" {
		return domain.Record{}, &remote.RemoteError{Op: "create", Backend: backend, Message: "Missing owner for document permissions."}
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return domain.Record{}, remote.Wrap(backend, "create", err)
	}
	ts := s.now().UTC().Format(time.RFC3339Nano)

	_, err = s.db.ExecContext(ctx, `
INSERT INTO documents (id, owner, company, role, work_type, city, status, applied_date, source, link, notes, contact, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`,
		id.String(), owner,
		in.Company, in.Role, in.WorkType, in.City, string(in.Status), in.AppliedDate.String(),
		in.Source, in.Link, in.Notes, in.Contact,
		ts, ts,
	)
	if err != nil {
		return domain.Record{}, remote.Wrap(backend, "create", err)
	}
	return s.get(ctx, "create", owner, id.String())
}

// columns maps patch fields to their column; LastContacted has none.
func columns(p domain.Patch) ([]string, []any) {
	var cols []string
	var args []any
	add := func(col string, v any) {
		cols = append(cols, col+" = ?")
		args = append(args, v)
	}
	if p.Company != nil {
		add("company", *p.Company)
	}
	if p.Role != nil {
		add("role", *p.Role)
	}
	if p.WorkType != nil {
		add("work_type", *p.WorkType)
	}
	if p.City != nil {
		add("city", *p.City)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if p.AppliedDate != nil {
		add("applied_date", p.AppliedDate.String())
	}
	if p.Source != nil {
		add("source", *p.Source)
	}
	if p.Link != nil {
		add("link", *p.Link)
	}
	if p.Notes != nil {
		add("notes", *p.Notes)
	}
	if p.Contact != nil {
		add("contact", *p.Contact)
	}
	return cols, args
}

func (s *Store) Update(ctx context.Context, owner, id string, p domain.Patch) (domain.Record, error) {
	cols, args := columns(p)
	cols = append(cols, "updated_at = ?")
	args = append(args, s.now().UTC().Format(time.RFC3339Nano), id, owner)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE documents SET %s WHERE id = ? AND owner = ?;`, strings.Join(cols, ", ")),
		args...,
	)
	if err != nil {
		return domain.Record{}, remote.Wrap(backend, "update", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Record{}, notFound("update")
	}
	return s.get(ctx, "update", owner, id)
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND owner = ?;`, id, owner)
	if err != nil {
		return remote.Wrap(backend, "delete", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("delete")
	}
	return nil
}

func (s *Store) get(ctx context.Context, op, owner, id string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+selectCols+`
FROM documents
WHERE id = ? AND owner = ?;
`, id, owner)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, notFound(op)
	}
	if err != nil {
		return domain.Record{}, remote.Wrap(backend, op, err)
	}
	return r, nil
}

func notFound(op string) error {
	return &remote.RemoteError{
		Op:      op,
		Backend: backend,
		Message: "Document with the requested ID could not be found.",
		Err:     remote.ErrNotFound,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (domain.Record, error) {
	var (
		r       domain.Record
		status  string
		applied string
	)
	if err := sc.Scan(
		&r.ID,
		&r.Company,
		&r.Role,
		&r.WorkType,
		&r.City,
		&status,
		&applied,
		&r.Source,
		&r.Link,
		&r.Notes,
		&r.Contact,
	); err != nil {
		return domain.Record{}, err
	}
	r.Status = domain.Status(status)
	r.AppliedDate = domain.Date(applied)
	return r, nil
}
