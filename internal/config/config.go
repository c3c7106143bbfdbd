package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Remote backends.
const (
	BackendNone   = "none"
	BackendSQLite = "sqlite"
	BackendNotion = "notion"
)

type Config struct {
	App struct {
		Host        string `yaml:"host" json:"host"`
		Port        int    `yaml:"port" json:"port"`
		DataDir     string `yaml:"data_dir" json:"data_dir"`
		SeedSamples bool   `yaml:"seed_samples" json:"seed_samples"`
		PageSize    int    `yaml:"page_size" json:"page_size"`

		// Browser origins the API answers. An entry without a port matches
		// every port of that scheme and host.
		AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
	} `yaml:"app" json:"app"`

	Remote struct {
		Backend           string  `yaml:"backend" json:"backend"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		Burst             int     `yaml:"burst" json:"burst"`

		// 0 disables the periodic reachability check.
		PingIntervalSeconds int `yaml:"ping_interval_seconds" json:"ping_interval_seconds"`

		SQLite struct {
			Path string `yaml:"path" json:"path"`
		} `yaml:"sqlite" json:"sqlite"`

		Notion struct {
			DatabaseID string `yaml:"database_id" json:"database_id"`
			// Token never touches the config file: it comes from the
			// environment or the OS keychain.
			Token string `yaml:"-" json:"-"`
		} `yaml:"notion" json:"notion"`
	} `yaml:"remote" json:"remote"`

	Auth struct {
		Google struct {
			ClientID     string `yaml:"client_id" json:"client_id"`
			ClientSecret string `yaml:"-" json:"-"`
			RedirectURL  string `yaml:"redirect_url" json:"redirect_url"`
		} `yaml:"google" json:"google"`
	} `yaml:"auth" json:"auth"`

	LinkPreview struct {
		Enabled           bool    `yaml:"enabled" json:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second" json:"requests_per_second"`
		TimeoutSeconds    int     `yaml:"timeout_seconds" json:"timeout_seconds"`
	} `yaml:"link_preview" json:"link_preview"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// LoadRuntime loads the file at path and overlays the environment. An
// empty app.data_dir becomes dataDir.
func LoadRuntime(path, dataDir string, env map[string]string) (Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if cfg.App.DataDir == "" {
		cfg.App.DataDir = dataDir
	}
	return ApplyEnv(cfg, env)
}
