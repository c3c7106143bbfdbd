package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

type fakeGoogle struct {
	srv        *httptest.Server
	picture    atomic.Value
	failInfo   atomic.Bool
	infoCalled atomic.Int32
	refreshed  atomic.Int32
	// holds /userinfo until closed when set
	gate       atomic.Value
}

func newFakeGoogle(t *testing.T) *fakeGoogle {
	t.Helper()
	f := &fakeGoogle{}
	f.picture.Store("https://img.example/a.png")

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch {
		case r.Form.Get("grant_type") == "refresh_token" && r.Form.Get("refresh_token") == "refresh-1":
			f.refreshed.Add(1)
		case r.Form.Get("code") == "good-code":
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		f.infoCalled.Add(1)
		if gate, ok := f.gate.Load().(chan struct{}); ok {
			select {
			case <-gate:
			case <-r.Context().Done():
			}
		}
		if f.failInfo.Load() || r.Header.Get("Authorization") != "Bearer tok-1" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"sub":     "google-123",
			"email":   "sam@example.com",
			"name":    "Sam",
			"picture": f.picture.Load().(string),
		})
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeGoogle) provider(t *testing.T) *Google {
	t.Helper()
	g, err := NewGoogle(GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://127.0.0.1/auth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   f.srv.URL + "/auth",
			TokenURL:  f.srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
		UserInfoEndpoint: f.srv.URL + "/userinfo",
	})
	require.NoError(t, err)
	return g
}

func TestNewGoogleRequiresCredentials(t *testing.T) {
	_, err := NewGoogle(GoogleConfig{ClientID: "x"})
	assert.ErrorIs(t, err, ErrSignInUnavailable)
}

func TestSignInURLCarriesState(t *testing.T) {
	keyring.MockInit()
	g := newFakeGoogle(t).provider(t)

	u, err := g.SignInURL("state-abc")
	require.NoError(t, err)
	assert.Contains(t, u, "state=state-abc")
	assert.Contains(t, u, "client_id=client-id")

	_, err = g.SignInURL(" ")
	assert.Error(t, err)
}

func TestSignedOutByDefault(t *testing.T) {
	keyring.MockInit()
	g := newFakeGoogle(t).provider(t)

	u, err := g.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestCompleteAndRestore(t *testing.T) {
	keyring.MockInit()
	fake := newFakeGoogle(t)
	ctx := context.Background()

	u, err := fake.provider(t).Complete(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "google-123", u.ID)
	assert.Equal(t, "sam@example.com", u.Email)
	assert.Equal(t, "https://img.example/a.png", u.AvatarURL)

	// A fresh provider is a restarted engine.
	fake.picture.Store("https://img.example/b.png")
	restored, err := fake.provider(t).CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "google-123", restored.ID)
	assert.Equal(t, "https://img.example/b.png", restored.AvatarURL)
}

func TestAvatarEnrichmentFailureIsSilent(t *testing.T) {
	keyring.MockInit()
	fake := newFakeGoogle(t)
	ctx := context.Background()

	_, err := fake.provider(t).Complete(ctx, "good-code")
	require.NoError(t, err)

	fake.failInfo.Store(true)
	g := fake.provider(t)
	u, err := g.CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "https://img.example/a.png", u.AvatarURL)

	calls := fake.infoCalled.Load()
	_, err = g.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, calls, fake.infoCalled.Load(), "enrichment runs once per restore")
}

func TestAvatarLookupDoesNotBlockOtherCallers(t *testing.T) {
	keyring.MockInit()
	fake := newFakeGoogle(t)
	ctx := context.Background()

	_, err := fake.provider(t).Complete(ctx, "good-code")
	require.NoError(t, err)

	gate := make(chan struct{})
	fake.gate.Store(gate)
	g := fake.provider(t)
	before := fake.infoCalled.Load()

	first := make(chan *User, 1)
	go func() {
		u, _ := g.CurrentUser(ctx)
		first <- u
	}()
	require.Eventually(t, func() bool { return fake.infoCalled.Load() > before }, 2*time.Second, 5*time.Millisecond)

	second := make(chan *User, 1)
	go func() {
		u, _ := g.CurrentUser(ctx)
		second <- u
	}()
	select {
	case u := <-second:
		require.NotNil(t, u)
		assert.Equal(t, "google-123", u.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("CurrentUser waited on the avatar lookup")
	}

	close(gate)
	u := <-first
	require.NotNil(t, u)
	assert.Equal(t, "https://img.example/a.png", u.AvatarURL)
}

func TestRefreshedTokenIsPersisted(t *testing.T) {
	keyring.MockInit()
	fake := newFakeGoogle(t)
	ctx := context.Background()

	require.NoError(t, save(&stored{
		Token: &oauth2.Token{
			AccessToken:  "tok-old",
			TokenType:    "Bearer",
			RefreshToken: "refresh-1",
			Expiry:       time.Now().Add(-time.Hour),
		},
		User: User{ID: "google-123", Email: "sam@example.com"},
	}))

	u, err := fake.provider(t).CurrentUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "https://img.example/a.png", u.AvatarURL)
	assert.Equal(t, int32(1), fake.refreshed.Load())

	s, err := load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", s.Token.AccessToken)
	assert.Equal(t, "refresh-1", s.Token.RefreshToken)
	assert.Equal(t, "https://img.example/a.png", s.User.AvatarURL)

	// The next restart finds a valid token and does not refresh again.
	_, err = fake.provider(t).CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), fake.refreshed.Load())
}

func TestExpiredTokenWithoutRefreshKeepsUser(t *testing.T) {
	keyring.MockInit()
	fake := newFakeGoogle(t)

	require.NoError(t, save(&stored{
		Token: &oauth2.Token{AccessToken: "tok-old", TokenType: "Bearer", Expiry: time.Now().Add(-time.Hour)},
		User:  User{ID: "google-123", AvatarURL: "https://img.example/old.png"},
	}))

	u, err := fake.provider(t).CurrentUser(context.Background())
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "https://img.example/old.png", u.AvatarURL)
	assert.Equal(t, int32(0), fake.infoCalled.Load())
}

func TestCompleteRejectsBadCode(t *testing.T) {
	keyring.MockInit()
	g := newFakeGoogle(t).provider(t)

	_, err := g.Complete(context.Background(), "bad-code")
	require.Error(t, err)

	u, err := g.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestSignOutClearsKeychain(t *testing.T) {
	keyring.MockInit()
	fake := newFakeGoogle(t)
	ctx := context.Background()

	g := fake.provider(t)
	_, err := g.Complete(ctx, "good-code")
	require.NoError(t, err)

	g.SignOut(ctx)
	u, err := g.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = fake.provider(t).CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	// Signing out twice is fine.
	g.SignOut(ctx)
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	s := NewStatic(&User{ID: "local"})

	u, err := s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "local", u.ID)

	u.ID = "mutated"
	again, _ := s.CurrentUser(ctx)
	assert.Equal(t, "local", again.ID)

	_, err = s.SignInURL("x")
	assert.ErrorIs(t, err, ErrSignInUnavailable)

	s.SignOut(ctx)
	u, err = s.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)
}
