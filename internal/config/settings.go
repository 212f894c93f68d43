package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// SheetSettings configures the spreadsheet web service backend.
// The bearer token lives in the keyring under Account.
type SheetSettings struct {
	URL      string        `yaml:"url"`
	Account  string        `yaml:"account"`
	Attempts int           `yaml:"attempts"`
	Timeout  time.Duration `yaml:"timeout"`
	Backoff  time.Duration `yaml:"backoff"`
}

// PostgresSettings configures the database backend. The DSN is a secret
// stored in the keyring under Account (or REMINDERS_POSTGRES_DSN).
type PostgresSettings struct {
	Account string `yaml:"account"`
}

// ImportSettings is the default source for -import.
type ImportSettings struct {
	Mode      string `yaml:"mode"`
	LocalPath string `yaml:"local_path"`
	WebURL    string `yaml:"web_url"`
	WebUser   string `yaml:"web_user"`
}

// BasicAuthSettings enables HTTP Basic Auth on everything but /health.
// The password is read from the keyring.
type BasicAuthSettings struct {
	Username string `yaml:"username"`
}

// Settings is the YAML settings file.
type Settings struct {
	Listen          string `yaml:"listen"`
	Language        string `yaml:"language"`
	Notifications   bool   `yaml:"notifications"`
	RefreshCron     string `yaml:"refresh"`
	ReminderTrigger string `yaml:"reminder_trigger"`
	Backend         string `yaml:"backend"`

	Sheet     SheetSettings      `yaml:"sheet"`
	Postgres  PostgresSettings   `yaml:"postgres"`
	Import    ImportSettings     `yaml:"import"`
	BasicAuth *BasicAuthSettings `yaml:"basic_auth,omitempty"`
}

// DefaultSettings returns the first-run settings.
func DefaultSettings() *Settings {
	s := &Settings{Notifications: true}
	s.Normalize()
	return s
}

// Normalize fills zero values with defaults.
func (s *Settings) Normalize() {
	if s.Listen == "" {
		s.Listen = DefaultListen
	}
	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	if s.RefreshCron == "" {
		s.RefreshCron = DefaultRefreshCron
	}
	if s.ReminderTrigger == "" {
		s.ReminderTrigger = DefaultReminderTrigger
	}
	switch s.Backend {
	case BackendSheet, BackendPostgres, BackendMemory:
	default:
		s.Backend = DefaultBackend
	}
	if s.Sheet.Account == "" {
		s.Sheet.Account = DefaultSheetAccount
	}
	if s.Sheet.Attempts <= 0 {
		s.Sheet.Attempts = DefaultRetryAttempts
	}
	if s.Sheet.Timeout <= 0 {
		s.Sheet.Timeout = DefaultStorageTimeout
	}
	if s.Sheet.Backoff <= 0 {
		s.Sheet.Backoff = DefaultRetryBackoff
	}
	if s.Postgres.Account == "" {
		s.Postgres.Account = BackendPostgres
	}
	if s.Import.Mode == "" {
		s.Import.Mode = SourceModeLocal
	}
	if s.BasicAuth != nil && s.BasicAuth.Username == "" {
		s.BasicAuth = nil
	}
}

// DefaultSettingsPath is config.yaml in the user config directory.
func DefaultSettingsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrConfigDir, err)
	}
	return filepath.Join(dir, AppID, ConfigFileName), nil
}

// Load reads the settings at path. A missing file is created with the
// defaults (0600).
func Load(path string) (*Settings, error) {
	if path == "" {
		return nil, errors.New(ErrConfigPathEmpty)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s := DefaultSettings()
			if err := Save(path, s); err != nil {
				return s, err
			}
			slog.Info(MsgSettingsCreated,
				LogKeyComponent, CompConfig,
				LogKeyConfig, path)
			return s, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrConfigRead, err)
	}

	// Fields missing from the file keep their defaults.
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigParse, err)
	}
	s.Normalize()
	return s, nil
}

// Save writes s atomically through a temp file in the same directory.
func Save(path string, s *Settings) error {
	if path == "" {
		return errors.New(ErrConfigPathEmpty)
	}
	if s == nil {
		return errors.New(ErrConfigNil)
	}
	s.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}

	tmp, err := os.CreateTemp(dir, ConfigTempPattern)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}
	if err := tmp.Chmod(FilePermUserRW); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%s: %w", ErrConfigWrite, err)
	}
	return nil
}

// Secret reads account from the OS keyring, falling back to the envKey
// environment variable when the keyring has nothing (or is unavailable).
func Secret(account, envKey string) (string, error) {
	secret, err := keyring.Get(KeyringService, account)
	if err == nil && secret != "" {
		return secret, nil
	}

	if v := os.Getenv(envKey); v != "" {
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			slog.Warn(MsgSecretFallback,
				LogKeyComponent, CompConfig,
				LogKeyAccount, account,
				LogKeyError, err)
		}
		return v, nil
	}

	if err == nil {
		err = keyring.ErrNotFound
	}
	return "", fmt.Errorf("%s (%s): %w", ErrSecretMissing, account, err)
}

// StoreSecret saves secret in the OS keyring under account.
func StoreSecret(account, secret string) error {
	if err := keyring.Set(KeyringService, account, secret); err != nil {
		return fmt.Errorf("%s: %w", ErrSecretStore, err)
	}
	slog.Info(MsgSecretStored,
		LogKeyComponent, CompConfig,
		LogKeyAccount, account)
	return nil
}

// BasicAuthAccount is the keyring account holding user's password.
func BasicAuthAccount(user string) string {
	return KeyringBasicAuthPrefix + user
}
