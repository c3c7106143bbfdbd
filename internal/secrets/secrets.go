package secrets

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/zalando/go-keyring"

	"jobtracker-engine/internal/config"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "jobtracker"
)

var ErrNotFound = errors.New("secret not found (set it in keychain or via env)")

func NotionKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("jobtracker:notion:%s", strings.TrimSpace(cfg.Remote.Notion.DatabaseID))
}

func GoogleKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("jobtracker:google:%s", strings.TrimSpace(cfg.Auth.Google.ClientID))
}

func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	v, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(v) == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func Set(account, secret string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return errors.New("secret is empty")
	}
	return keyring.Set(KeyringService, account, secret)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Fill takes secrets missing from cfg (not given via env) from the keychain.
func Fill(cfg config.Config) config.Config {
	if cfg.Remote.Notion.Token == "" && cfg.Remote.Notion.DatabaseID != "" {
		if tok, err := Get(NotionKeyringAccount(cfg)); err == nil {
			cfg.Remote.Notion.Token = tok
		} else if !errors.Is(err, ErrNotFound) {
			log.Printf("level=warn msg=\"keychain lookup failed\" secret=notion err=%q", err.Error())
		}
	}
	if cfg.Auth.Google.ClientSecret == "" && cfg.Auth.Google.ClientID != "" {
		if sec, err := Get(GoogleKeyringAccount(cfg)); err == nil {
			cfg.Auth.Google.ClientSecret = sec
		} else if !errors.Is(err, ErrNotFound) {
			log.Printf("level=warn msg=\"keychain lookup failed\" secret=google err=%q", err.Error())
		}
	}
	return cfg
}
