// Package remote defines the contract between the tracker and a durable
// document store that mirrors every mutation while a user is signed in.
package remote

import (
	"context"
	"errors"
	"fmt"

	"jobtracker-engine/internal/domain"
)

// Adapter is a remote document store holding one document per record.
// Every call is scoped to an owner: documents are readable, updatable and
// deletable only by the user that created them.
type Adapter interface {
	Name() string
	Ping(ctx context.Context) error

	// List returns the owner's records, newest first.
	List(ctx context.Context, owner string) ([]domain.Record, error)

	// Create stores in and returns it with a store-assigned id.
	// LastContacted is never written on create.
	Create(ctx context.Context, owner string, in domain.Input) (domain.Record, error)

	// Update applies the non-nil fields of p and returns the stored record.
	Update(ctx context.Context, owner, id string, p domain.Patch) (domain.Record, error)

	Delete(ctx context.Context, owner, id string) error
}

// ErrNotFound is wrapped by adapters when a document does not exist or
// belongs to another owner.
var ErrNotFound = errors.New("document not found")

// RemoteError is returned by adapters for any failed call. Message is the
// optional human-readable diagnostic reported by the store.
type RemoteError struct {
	Op      string
	Backend string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", e.Backend, e.Op, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s %s: %s", e.Backend, e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Backend, e.Op)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Diagnostic extracts the store-supplied message from err, or "".
func Diagnostic(err error) string {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}

// Wrap builds a RemoteError unless err is nil or already one.
func Wrap(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Backend: backend, Err: err}
}
