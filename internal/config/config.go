// Package config loads checkerctl settings from a TOML file, environment
// variables and defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables consulted by Load and Resolve.
const (
	EnvConfig     = "CHECKERCTL_CONFIG"
	EnvExecutable = "CHECKERCTL_EXECUTABLE"
	EnvWallet     = "CHECKERCTL_WALLET"
	EnvColor      = "CHECKERCTL_COLOR"
)

// Defaults mirror the vendor's install layout.
const (
	DefaultExecutable    = "/root/AethirCheckerCLI-linux/AethirCheckerCLI"
	DefaultInstallScript = "/root/AethirCheckerCLI-linux/install.sh"
	DefaultWallet        = "/root/wallet.json"
	DefaultUnit          = "aethir-checker"
	DefaultInterval      = 5 * time.Minute
)

// Duration is a time.Duration written as a string such as "10s".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q", string(text))
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the whole settings file.
type Config struct {
	Executable string `toml:"executable"`

	// WorkDir is where the checker runs. Empty means the executable's
	// directory.
	WorkDir string `toml:"workdir"`

	InstallScript string `toml:"install_script"`
	Wallet        string `toml:"wallet"`
	Unit          string `toml:"unit"`

	// Color is "auto", "always" or "never".
	Color string `toml:"color"`

	Session   Session   `toml:"session"`
	Retry     Retry     `toml:"retry"`
	Heartbeat Heartbeat `toml:"heartbeat"`
}

// Session bounds one conversation with the checker.
type Session struct {
	Timeout          Duration          `toml:"timeout"`
	ExitWait         Duration          `toml:"exit_wait"`
	TerminationGrace Duration          `toml:"termination_grace"`
	ReaderJoin       Duration          `toml:"reader_join"`
	Env              map[string]string `toml:"env"`
	EnvDeny          []string          `toml:"env_deny"`
}

// Retry bounds status queries.
type Retry struct {
	Attempts       int      `toml:"attempts"`
	Backoff        Duration `toml:"backoff"`
	AttemptTimeout Duration `toml:"attempt_timeout"`
	Settle         Duration `toml:"settle"`
}

// Heartbeat configures watch mode.
type Heartbeat struct {
	Interval Duration `toml:"interval"`

	// AutoApprove approves pending licenses during a heartbeat.
	AutoApprove bool `toml:"auto_approve"`
}

// Default returns the built-in configuration. Zero session and retry
// bounds are filled in by the packages that use them.
func Default() *Config {
	return &Config{
		Executable:    DefaultExecutable,
		InstallScript: DefaultInstallScript,
		Wallet:        DefaultWallet,
		Unit:          DefaultUnit,
		Color:         "auto",
		Heartbeat: Heartbeat{
			Interval:    Duration(DefaultInterval),
			AutoApprove: true,
		},
	}
}

// Validate checks values a file may have set wrongly.
func (c *Config) Validate() error {
	if c.Executable == "" {
		return errors.New("executable must be non-empty")
	}
	if c.Wallet == "" {
		return errors.New("wallet must be non-empty")
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	if c.Retry.Attempts < 0 {
		return fmt.Errorf("retry.attempts must be non-negative, got %d", c.Retry.Attempts)
	}
	for name, d := range map[string]Duration{
		"session.timeout":           c.Session.Timeout,
		"session.exit_wait":         c.Session.ExitWait,
		"session.termination_grace": c.Session.TerminationGrace,
		"session.reader_join":       c.Session.ReaderJoin,
		"retry.backoff":             c.Retry.Backoff,
		"retry.attempt_timeout":     c.Retry.AttemptTimeout,
		"retry.settle":              c.Retry.Settle,
		"heartbeat.interval":        c.Heartbeat.Interval,
	} {
		if d < 0 {
			return fmt.Errorf("%s must be non-negative, got %s", name, d.Std())
		}
	}
	for i, p := range c.Session.EnvDeny {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("session.env_deny[%d]: invalid pattern %q", i, p)
		}
	}
	return nil
}

// ExecutableDir returns the directory the checker should run from.
func (c *Config) ExecutableDir() string {
	if c.WorkDir != "" {
		return c.WorkDir
	}
	return filepath.Dir(c.Executable)
}

// Path returns the config file to read: flag, then $CHECKERCTL_CONFIG,
// then ~/.checkerctl/config.toml. The bool reports whether the path was
// named explicitly, in which case it must exist.
func Path(flag string) (string, bool, error) {
	if flag != "" {
		return flag, true, nil
	}
	if env := os.Getenv(EnvConfig); env != "" {
		return env, true, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".checkerctl", "config.toml"), false, nil
}

// Load reads the config file chosen by Path, applies environment
// overrides and validates the result. A missing default file yields the
// defaults.
func Load(flag string) (*Config, error) {
	file, explicit, err := Path(flag)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", file, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", file, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults without consulting the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := decode(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvExecutable); v != "" {
		cfg.Executable = v
	}
	if v := os.Getenv(EnvWallet); v != "" {
		cfg.Wallet = v
	}
	if v := os.Getenv(EnvColor); v != "" {
		cfg.Color = normalizeColor(v)
	}
}

// normalizeColor maps the boolean spellings accepted in the environment to
// always or never.
func normalizeColor(v string) string {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return "always"
	case "0", "false", "no", "off":
		return "never"
	}
	return strings.ToLower(v)
}

// Encode writes cfg as TOML.
func Encode(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
