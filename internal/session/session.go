// Package session answers "who is signed in" for the tracker. Sync with the
// remote document store is only enabled while CurrentUser returns a user.
package session

import (
	"context"
	"errors"
	"sync"
)

// User is the signed-in identity. ID scopes document ownership.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type Provider interface {
	// CurrentUser returns nil when nobody is signed in.
	CurrentUser(ctx context.Context) (*User, error)
	// SignInURL starts a redirect-based sign-in.
	SignInURL(state string) (string, error)
	// Complete finishes sign-in with the code from the redirect.
	Complete(ctx context.Context, code string) (*User, error)
	// SignOut never fails from the caller's point of view.
	SignOut(ctx context.Context)
}

var ErrSignInUnavailable = errors.New("sign-in is not configured")

// Static is a provider without an identity service: local-only mode when
// empty, a fixed user in tests and development.
type Static struct {
	mu   sync.Mutex
	user *User
}

func NewStatic(u *User) *Static {
	return &Static{user: u}
}

func (s *Static) CurrentUser(context.Context) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, nil
	}
	u := *s.user
	return &u, nil
}

func (s *Static) SignInURL(string) (string, error) {
	return "", ErrSignInUnavailable
}

func (s *Static) Complete(context.Context, string) (*User, error) {
	return nil, ErrSignInUnavailable
}

func (s *Static) SignOut(context.Context) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}
