package cli

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/recordingking/rkdiag/internal/config"
)

// ValidConfigKeys lists all supported configuration keys.
var ValidConfigKeys = []string{
	config.KeyAPIBase,
	config.KeyPollInterval,
	config.KeyMaxAttempts,
}

// IsValidConfigKey reports whether key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	return slices.Contains(ValidConfigKeys, key)
}

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/rkdiag/config.
Settings can also be overridden via environment variables.

Supported settings:
  api-base           Speech service base URL (env: RECKING_API_BASE)
  poll-interval      Sleep between poll attempts (env: RECKING_POLL_INTERVAL)
  poll-max-attempts  Poll attempt budget (env: RECKING_POLL_MAX_ATTEMPTS)

The API bearer token is env-only: RECKING_API_TOKEN.`,
		Example: `  rkdiag config set poll-interval 2s
  rkdiag config get api-base
  rkdiag config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  rkdiag config set api-base https://ly.gl173.com
  rkdiag config set poll-interval 2s
  rkdiag config set poll-max-attempts 30`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Example: `  rkdiag config get poll-interval`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all configuration values",
		Example: `  rkdiag config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunConfigList(env)
		},
	}
}

// RunConfigSet validates and persists a configuration value.
func RunConfigSet(env *Env, key, value string) error {
	if !IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid: %v)", key, ValidConfigKeys)
	}

	if err := validateConfigValue(key, value); err != nil {
		return err
	}

	if err := config.SaveValue(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// validateConfigValue checks a value against its key's expected form.
func validateConfigValue(key, value string) error {
	switch key {
	case config.KeyAPIBase:
		if value == "" {
			return fmt.Errorf("api-base cannot be empty")
		}
	case config.KeyPollInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return fmt.Errorf("poll-interval must be a positive duration (e.g. 2s), got %q", value)
		}
	case config.KeyMaxAttempts:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("poll-max-attempts must be a positive integer, got %q", value)
		}
	}
	return nil
}

// RunConfigGet prints a configuration value to stdout.
func RunConfigGet(env *Env, key string) error {
	if !IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key %q (valid: %v)", key, ValidConfigKeys)
	}

	value, err := config.GetValue(key)
	if err != nil {
		return err
	}
	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// RunConfigList prints all configured values to stdout.
func RunConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, data[key])
	}
	return nil
}
