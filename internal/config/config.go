// Package config loads petrel's own tool settings: where the cluster
// binaries live, where the runtime-archive scratch cache sits, and how the
// runtime archive gets built. These are settings about the tool itself —
// topology configuration is separate and stays opaque (see internal/topology).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/fourk/Petrel/internal/runtimejar"
)

type Settings struct {
	Storm  StormConfig  `mapstructure:"storm"`
	Java   JavaConfig   `mapstructure:"java"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Source SourceConfig `mapstructure:"source"`
	Build  BuildConfig  `mapstructure:"build"`
	UI     UIConfig     `mapstructure:"ui"`
}

type StormConfig struct {
	// Bin is the cluster manager executable resolved on PATH.
	Bin string `mapstructure:"bin"`
}

type JavaConfig struct {
	// Bin is the JVM launcher used for topology submission.
	Bin string `mapstructure:"bin"`
}

type CacheConfig struct {
	// Dir is the scratch root holding cached per-version runtime archives.
	Dir string `mapstructure:"dir"`
}

type SourceConfig struct {
	// Dir is the runtime-archive source tree handed to the build tool.
	Dir string `mapstructure:"dir"`
}

type BuildConfig struct {
	// Command is the build-tool invocation template; {version} is replaced
	// with the resolved cluster version before shell-style splitting.
	Command string `mapstructure:"command"`
}

type UIConfig struct {
	// Scheme and Port locate the cluster UI's REST endpoint for status.
	Scheme string `mapstructure:"scheme"`
	Port   int    `mapstructure:"port"`
}

// Load reads settings from an optional petrel.yaml plus PETREL_* environment
// variables (PETREL_STORM_BIN, PETREL_CACHE_DIR, ...). A missing config file
// is fine; the defaults cover a standard installation.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("petrel")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".petrel"))
		}
	}

	v.SetDefault("storm.bin", "storm")
	v.SetDefault("java.bin", "java")
	v.SetDefault("cache.dir", defaultCacheDir())
	v.SetDefault("source.dir", defaultSourceDir())
	v.SetDefault("build.command", runtimejar.DefaultBuildCommand)
	v.SetDefault("ui.scheme", "http")
	v.SetDefault("ui.port", 8080)

	v.AutomaticEnv()
	v.SetEnvPrefix("PETREL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is the common case; defaults and env cover it.
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &s, nil
}

// defaultCacheDir is the well-known scratch root shared by every petrel
// invocation on the host.
func defaultCacheDir() string {
	return filepath.Join(os.TempDir(), "petrel")
}

// defaultSourceDir looks for the runtime-archive source tree next to the
// petrel executable first (the installed layout), then under the working
// directory (the development layout).
func defaultSourceDir() string {
	if exePath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exePath), "jvmpetrel")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "jvmpetrel"
}
