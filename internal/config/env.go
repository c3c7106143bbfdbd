package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environ merges the given .env files (later files win, missing files are
// skipped) with the process environment, which wins over both.
func Environ(files ...string) (map[string]string, error) {
	env := map[string]string{}
	for _, f := range files {
		vals, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range vals {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overlays environment settings on cfg.
//
//	TRACKER_HOST, TRACKER_PORT, TRACKER_DATA_DIR, TRACKER_SEED_SAMPLES
//	TRACKER_REMOTE_BACKEND, TRACKER_SQLITE_PATH
//	NOTION_TOKEN, NOTION_DB_ID
//	GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REDIRECT_URL
func ApplyEnv(cfg Config, env map[string]string) (Config, error) {
	str := func(key string, dst *string) {
		if v, ok := env[key]; ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str("TRACKER_HOST", &cfg.App.Host)
	str("TRACKER_DATA_DIR", &cfg.App.DataDir)
	str("TRACKER_REMOTE_BACKEND", &cfg.Remote.Backend)
	str("TRACKER_SQLITE_PATH", &cfg.Remote.SQLite.Path)
	str("NOTION_TOKEN", &cfg.Remote.Notion.Token)
	str("NOTION_DB_ID", &cfg.Remote.Notion.DatabaseID)
	str("GOOGLE_CLIENT_ID", &cfg.Auth.Google.ClientID)
	str("GOOGLE_CLIENT_SECRET", &cfg.Auth.Google.ClientSecret)
	str("GOOGLE_REDIRECT_URL", &cfg.Auth.Google.RedirectURL)

	if v := strings.TrimSpace(env["TRACKER_PORT"]); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("TRACKER_PORT: %w", err)
		}
		cfg.App.Port = port
	}
	if v := strings.TrimSpace(env["TRACKER_SEED_SAMPLES"]); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("TRACKER_SEED_SAMPLES: %w", err)
		}
		cfg.App.SeedSamples = b
	}
	return cfg, nil
}
