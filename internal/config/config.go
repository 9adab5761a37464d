package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/untoldecay/biascheck/internal/debug"
)

// EnvPrefix is prepended to every environment variable biascheck reads.
const EnvPrefix = "BIASCHECK"

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
//
// Precedence for the config file: explicit path > ./.biascheck/config.yaml >
// $XDG_CONFIG_HOME/biascheck/config.yaml. Environment variables override the file.
func Initialize(explicitPath string) error {
	v = viper.New()
	v.SetConfigType("yaml")

	configFile := explicitPath
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// BIASCHECK_OUTPUT maps to "output", BIASCHECK_LOG_FILE to "log.file".
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if configFile != "" {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("Debug: loaded config from %s\n", v.ConfigFileUsed())
	} else {
		debug.Logf("Debug: no config.yaml found; using defaults and environment variables\n")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Classification
	v.SetDefault("provider", "anthropic")
	v.SetDefault("model", "")
	v.SetDefault("api-key", "")
	v.SetDefault("base-url", "")
	v.SetDefault("max-tokens", 16)
	v.SetDefault("prompt-file", "")
	v.SetDefault("timeout", "0s")
	v.SetDefault("actor", "")

	// Files, named after the original data-volume layout
	v.SetDefault("input", "aggregate_data.tsv")
	v.SetDefault("output", "aggregate_data_checked.tsv")
	v.SetDefault("responses", "array_data.txt")
	v.SetDefault("interactions", "")
	v.SetDefault("column", "sentence")
	v.SetDefault("metrics-file", "")
	v.SetDefault("summary-file", "")

	// Logging (lumberjack rotation applies only when log.file is set)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max-size-mb", 10)
	v.SetDefault("log.max-backups", 3)
	v.SetDefault("log.max-age-days", 28)

	for key, names := range envAliases {
		_ = v.BindEnv(append([]string{key, EnvKey(key)}, names...)...)
	}
}

// envAliases are provider variables read in addition to BIASCHECK_*.
var envAliases = map[string][]string{
	"api-key":  {"ANTHROPIC_API_KEY"},
	"base-url": {"ANTHROPIC_BASE_URL"},
}

func findConfigFile() string {
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, ".biascheck", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(dir, "biascheck", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault    ConfigSource = "default"
	SourceConfigFile ConfigSource = "config_file"
	SourceEnvVar     ConfigSource = "env_var"
	SourceFlag       ConfigSource = "flag"
)

// GetValueSource returns the source of a configuration value.
// Priority (highest to lowest): flag > env var > config file > default
func GetValueSource(key string) ConfigSource {
	if v == nil {
		return SourceDefault
	}
	if f, ok := boundFlags[key]; ok && f.Changed {
		return SourceFlag
	}
	if os.Getenv(EnvKey(key)) != "" {
		return SourceEnvVar
	}
	for _, name := range envAliases[key] {
		if os.Getenv(name) != "" {
			return SourceEnvVar
		}
	}
	if v.InConfig(key) {
		return SourceConfigFile
	}
	return SourceDefault
}

// EnvKey returns the environment variable that overrides key.
func EnvKey(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

var boundFlags = map[string]*pflag.Flag{}

// BindPFlag makes a cobra flag the highest-precedence source for key.
func BindPFlag(key string, flag *pflag.Flag) error {
	if v == nil {
		return fmt.Errorf("viper not initialized")
	}
	if flag == nil {
		return fmt.Errorf("flag for %q not found", key)
	}
	boundFlags[key] = flag
	return v.BindPFlag(key, flag)
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]interface{} {
	if v == nil {
		return map[string]interface{}{}
	}
	return v.AllSettings()
}

// Reset drops the singleton. Tests call it between runs.
func Reset() {
	v = nil
	boundFlags = map[string]*pflag.Flag{}
}
