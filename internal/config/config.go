// Package config loads and persists rkdiag settings.
//
// Settings live in a key=value file at ~/.config/rkdiag/config (or
// $XDG_CONFIG_HOME/rkdiag/config) with environment variable fallbacks.
// The API bearer token is deliberately env-only (RECKING_API_TOKEN) so
// it never lands in a world-readable config file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config keys.
const (
	KeyAPIBase      = "api-base"
	KeyPollInterval = "poll-interval"
	KeyMaxAttempts  = "poll-max-attempts"
)

// Environment variable fallbacks.
const (
	EnvAPIBase      = "RECKING_API_BASE"
	EnvAPIToken     = "RECKING_API_TOKEN"
	EnvPollInterval = "RECKING_POLL_INTERVAL"
	EnvMaxAttempts  = "RECKING_POLL_MAX_ATTEMPTS"
)

// Defaults matching the service's observed behavior: the conversion of
// a short probe usually lands within a few 2-second ticks, and 30
// attempts bounds the smoke test at one minute.
const (
	DefaultAPIBase      = "https://ly.gl173.com"
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 30
)

// Config holds user configuration.
type Config struct {
	APIBase      string
	PollInterval time.Duration
	MaxAttempts  int
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/rkdiag.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rkdiag"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rkdiag"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variables, then
// built-in defaults. A missing file is not an error.
func Load() (Config, error) {
	cfg := Config{
		APIBase:      DefaultAPIBase,
		PollInterval: DefaultPollInterval,
		MaxAttempts:  DefaultMaxAttempts,
	}

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	apply := func(key, env string, set func(string) error) error {
		value := data[key]
		if value == "" {
			value = os.Getenv(env)
		}
		if value == "" {
			return nil
		}
		if err := set(value); err != nil {
			return fmt.Errorf("config %s=%q: %w", key, value, err)
		}
		return nil
	}

	if err := apply(KeyAPIBase, EnvAPIBase, func(v string) error {
		cfg.APIBase = v
		return nil
	}); err != nil {
		return cfg, err
	}

	if err := apply(KeyPollInterval, EnvPollInterval, func(v string) error {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid duration")
		}
		cfg.PollInterval = d
		return nil
	}); err != nil {
		return cfg, err
	}

	if err := apply(KeyMaxAttempts, EnvMaxAttempts, func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid attempt count")
		}
		cfg.MaxAttempts = n
		return nil
	}); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Token returns the API bearer token from the environment.
// Empty when not configured.
func Token() string {
	return os.Getenv(EnvAPIToken)
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p)
	if err != nil {
		return map[string]string{}, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		data[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// SaveValue writes a single key=value to the config file, creating the
// directory and file as needed. Existing values are preserved.
func SaveValue(key, value string) error {
	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if existing == nil {
		existing = make(map[string]string)
	}

	existing[key] = value
	return writeFile(p, existing)
}

// writeFile writes the config map to a file.
func writeFile(p string, data map[string]string) error {
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	for key, value := range data {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, value); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// GetValue reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func GetValue(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config file values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}
