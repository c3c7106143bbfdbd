package cli

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"jobtracker-engine/internal/config"
	"jobtracker-engine/internal/remote"
	"jobtracker-engine/internal/remote/notiondoc"
	"jobtracker-engine/internal/remote/sqlitedoc"
	"jobtracker-engine/internal/secrets"
	"jobtracker-engine/internal/session"
)

// runtimeEnv is the on-disk state every command starts from.
type runtimeEnv struct {
	DataDir string
	CfgPath string
	env     map[string]string
}

func prepare(dataDir string) (*runtimeEnv, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create data dir", err)
	}
	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "config bootstrap failed", err)
	}
	env, err := config.Environ(filepath.Join(dataDir, ".env"), ".env")
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "read .env", err)
	}
	return &runtimeEnv{DataDir: dataDir, CfgPath: cfgPath, env: env}, nil
}

// load reads config.yml, overlays the environment and keychain, and
// normalizes. Validation errors are returned in the Validation, not as err.
func (rt *runtimeEnv) load() (config.Config, config.Validation, error) {
	cfg, err := config.LoadRuntime(rt.CfgPath, rt.DataDir, rt.env)
	if err != nil {
		return cfg, config.Validation{}, fmt.Errorf("config load failed (%s): %w", rt.CfgPath, err)
	}
	cfg = secrets.Fill(cfg)
	cfg, vr := config.NormalizeAndValidate(cfg)
	return cfg, vr, nil
}

// openRemote returns a nil adapter when no backend is usable. A backend that
// is configured but cannot be opened logs a warning and leaves the engine in
// local-only mode.
func openRemote(cfg config.Config) (remote.Adapter, func() error) {
	noop := func() error { return nil }

	var ad remote.Adapter
	closer := noop
	switch cfg.Remote.Backend {
	case config.BackendSQLite:
		s, err := sqlitedoc.Open(cfg.Remote.SQLite.Path)
		if err != nil {
			log.Printf("level=warn msg=\"sqlite remote unavailable; running local-only\" path=%q err=%q", cfg.Remote.SQLite.Path, err.Error())
			return nil, noop
		}
		ad, closer = s, s.Close
	case config.BackendNotion:
		if cfg.Remote.Notion.DatabaseID == "" {
			log.Printf("level=warn msg=\"notion backend configured without a database id; running local-only\"")
			return nil, noop
		}
		if cfg.Remote.Notion.Token == "" {
			log.Printf("level=warn msg=\"notion backend configured without a token; running local-only\"")
			return nil, noop
		}
		ad = notiondoc.New(cfg.Remote.Notion.Token, cfg.Remote.Notion.DatabaseID, &http.Client{Timeout: 20 * time.Second})
	default:
		return nil, noop
	}
	return remote.NewLimited(ad, cfg.Remote.RequestsPerSecond, cfg.Remote.Burst), closer
}

// openSession falls back to a signed-out static provider when Google
// sign-in is not configured.
func openSession(cfg config.Config) session.Provider {
	g, err := session.NewGoogle(session.GoogleConfig{
		ClientID:     cfg.Auth.Google.ClientID,
		ClientSecret: cfg.Auth.Google.ClientSecret,
		RedirectURL:  cfg.Auth.Google.RedirectURL,
	})
	if err != nil {
		log.Printf("level=info msg=\"sign-in unavailable\" reason=%q", err.Error())
		return session.NewStatic(nil)
	}
	return g
}
