// Package config holds runtime settings for console scripts. Values come
// from, in order of precedence, CONSOLE_* environment variables, a
// console.yaml file and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keys
const (
	KeyPidDir       = "pid-dir"
	KeyHelpWidth    = "help-width"
	KeyLockWait     = "lock-wait"
	KeyPerArgUnique = "per-arg-unique"
	KeyUniqueID     = "unique-id"
	KeyVerbosity    = "verbosity"
)

// EnvPrefix is prepended to upper-cased keys, with dashes turned into
// underscores: pid-dir is read from CONSOLE_PID_DIR.
const EnvPrefix = "CONSOLE"

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()

	v.SetConfigName("console")
	v.SetConfigType("yaml")
	for _, dir := range searchPaths() {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyPidDir, "")
	v.SetDefault(KeyHelpWidth, 0)
	v.SetDefault(KeyLockWait, "2s")
	v.SetDefault(KeyPerArgUnique, true)
	v.SetDefault(KeyUniqueID, "")
	v.SetDefault(KeyVerbosity, "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// searchPaths lists the directories checked for console.yaml, most specific
// first: the working directory, then the user config directory.
func searchPaths() []string {
	paths := []string{"."}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "console"))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "console"))
	}
	return paths
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// ResetForTesting drops the singleton so the next Initialize starts clean.
func ResetForTesting() {
	v = nil
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
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

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// Settings is the resolved configuration a console starts from.
type Settings struct {
	PidDir       string
	HelpWidth    int
	LockWait     time.Duration
	PerArgUnique bool
	UniqueID     string
	Verbosity    string
}

// Load returns the current settings. Without Initialize it returns the
// built-in defaults.
func Load() Settings {
	if v == nil {
		return Settings{LockWait: 2 * time.Second, PerArgUnique: true}
	}
	return Settings{
		PidDir:       GetString(KeyPidDir),
		HelpWidth:    GetInt(KeyHelpWidth),
		LockWait:     GetDuration(KeyLockWait),
		PerArgUnique: GetBool(KeyPerArgUnique),
		UniqueID:     GetString(KeyUniqueID),
		Verbosity:    GetString(KeyVerbosity),
	}
}
