package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"jobtracker-engine/internal/secrets"
)

const (
	keyringAccount = "jobtracker:session"

	DefaultUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Overridable for tests.
	Endpoint         oauth2.Endpoint
	UserInfoEndpoint string
}

// stored is what goes into the keychain.
type stored struct {
	Token *oauth2.Token `json:"token"`
	User  User          `json:"user"`
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Google signs users in with Google OAuth2 and keeps the session in the OS
// keychain so it survives restarts.
type Google struct {
	oauth    *oauth2.Config
	userInfo string

	mu       sync.Mutex
	loaded   bool
	current  *stored
	enriched bool
}

func NewGoogle(cfg GoogleConfig) (*Google, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, ErrSignInUnavailable
	}
	ep := cfg.Endpoint
	if ep.AuthURL == "" {
		ep = google.Endpoint
	}
	ui := cfg.UserInfoEndpoint
	if ui == "" {
		ui = DefaultUserInfoEndpoint
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     ep,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		userInfo: ui,
	}, nil
}

func (g *Google) SignInURL(state string) (string, error) {
	if strings.TrimSpace(state) == "" {
		return "", errors.New("empty oauth state")
	}
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

func (g *Google) Complete(ctx context.Context, code string) (*User, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("no authorization code provided")
	}
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	info, err := g.fetchUserInfo(ctx, tok)
	if err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, errors.New("userinfo has no subject")
	}

	s := &stored{
		Token: tok,
		User:  User{ID: info.Sub, Email: info.Email, Name: info.Name, AvatarURL: info.Picture},
	}
	if err := save(s); err != nil {
		// The session still works for this process.
		log.Printf("level=warn msg=\"session not persisted\" err=%q", err.Error())
	}

	g.mu.Lock()
	g.current = s
	g.loaded = true
	g.enriched = true
	g.mu.Unlock()

	u := s.User
	return &u, nil
}

// CurrentUser restores the keychain session on first use. The first call
// after a restore also refreshes the token and avatar; that step never
// fails and runs without holding the lock.
func (g *Google) CurrentUser(ctx context.Context) (*User, error) {
	g.mu.Lock()
	if !g.loaded {
		s, err := load()
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			g.mu.Unlock()
			return nil, fmt.Errorf("restore session: %w", err)
		}
		g.current = s
		g.loaded = true
	}
	cur := g.current
	if cur == nil {
		g.mu.Unlock()
		return nil, nil
	}
	u := cur.User
	var tok *oauth2.Token
	if !g.enriched {
		g.enriched = true
		if cur.Token != nil {
			t := *cur.Token
			tok = &t
		}
	}
	g.mu.Unlock()

	if tok != nil {
		if refreshed, ok := g.refreshProfile(ctx, cur, tok); ok {
			u = refreshed
		}
	}
	return &u, nil
}

func (g *Google) SignOut(context.Context) {
	g.mu.Lock()
	g.current = nil
	g.loaded = true
	g.enriched = false
	g.mu.Unlock()

	if err := keyring.Delete(secrets.KeyringService, keyringAccount); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		log.Printf("level=warn msg=\"sign out: keychain delete failed\" err=%q", err.Error())
	}
}

// refreshProfile renews an expired access token and looks up the avatar.
// Errors are swallowed: a stale picture is not a failure. A renewed token
// is written back to the keychain. ok is false when cur was replaced by a
// sign-out or a new sign-in in the meantime.
func (g *Google) refreshProfile(ctx context.Context, cur *stored, tok *oauth2.Token) (User, bool) {
	fresh, err := g.oauth.TokenSource(ctx, tok).Token()
	if err != nil {
		log.Printf("level=warn msg=\"session token refresh failed\" err=%q", err.Error())
		return User{}, false
	}
	info, infoErr := g.fetchUserInfo(ctx, fresh)

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != cur {
		return User{}, false
	}
	changed := false
	if fresh.AccessToken != tok.AccessToken {
		cur.Token = fresh
		changed = true
	}
	if infoErr == nil && info.Picture != "" && info.Picture != cur.User.AvatarURL {
		cur.User.AvatarURL = info.Picture
		changed = true
	}
	if changed {
		if err := save(cur); err != nil {
			log.Printf("level=warn msg=\"session not persisted\" err=%q", err.Error())
		}
	}
	return cur.User, true
}

// fetchUserInfo sends tok as is; refreshing is the caller's job.
func (g *Google) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (googleUserInfo, error) {
	var info googleUserInfo

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfo, nil)
	if err != nil {
		return info, err
	}
	resp, err := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok)).Do(req)
	if err != nil {
		return info, fmt.Errorf("fetch user information: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return info, fmt.Errorf("userinfo endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("decode user info: %w", err)
	}
	return info, nil
}

func load() (*stored, error) {
	raw, err := keyring.Get(secrets.KeyringService, keyringAccount)
	if err != nil {
		return nil, err
	}
	var s stored
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode stored session: %w", err)
	}
	if s.User.ID == "" {
		return nil, keyring.ErrNotFound
	}
	return &s, nil
}

func save(s *stored) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return keyring.Set(secrets.KeyringService, keyringAccount, string(b))
}
