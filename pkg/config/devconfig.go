package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// LocalConfigFile is the project-local developer config filename.
const LocalConfigFile = "podpkg.local.toml"

// DevConfig holds developer-specific settings that are NOT committed to
// version control. Resolved with Viper precedence:
// CLI flags > podpkg.local.toml (project-local) > ~/.podpkg/config.toml (global).
type DevConfig struct {
	// Verbose enables per-pod progress output during install.
	Verbose bool `toml:"verbose" mapstructure:"verbose"`
	// NoCache forbids the downloaders from trusting previously fetched
	// archives even for released pod versions.
	NoCache bool `toml:"no_cache" mapstructure:"no_cache"`
}

// LoadDevConfig resolves developer configuration using Viper's merge
// semantics. verboseSet/noCacheSet indicate whether the corresponding CLI
// flag was given explicitly, in which case it takes highest precedence.
func LoadDevConfig(verbose, verboseSet, noCache, noCacheSet bool) (*DevConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	globalPath := filepath.Join(home, ".podpkg", "config.toml")
	return loadDevConfig(verbose, verboseSet, noCache, noCacheSet, globalPath, LocalConfigFile)
}

// loadDevConfig is the internal implementation that accepts explicit paths,
// making it testable without touching the real home directory.
func loadDevConfig(verbose, verboseSet, noCache, noCacheSet bool, globalPath, localPath string) (*DevConfig, error) {
	v := viper.New()
	v.SetConfigType("toml")

	// Lowest priority: global config. Ignore if missing.
	v.SetConfigFile(globalPath)
	_ = v.ReadInConfig()

	// Higher priority: project-local config.
	if _, err := os.Stat(localPath); err == nil {
		v.SetConfigFile(localPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", localPath, err)
		}
	}

	// Highest priority: CLI flags.
	if verboseSet {
		v.Set("verbose", verbose)
	}
	if noCacheSet {
		v.Set("no_cache", noCache)
	}

	cfg := &DevConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling dev config: %w", err)
	}

	return cfg, nil
}

// GlobalConfigDir returns the path to ~/.podpkg, creating it if necessary.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	dir := filepath.Join(home, ".podpkg")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// WriteLocalDevConfig persists developer config to podpkg.local.toml in the
// given project directory.
func WriteLocalDevConfig(projectDir string, cfg *DevConfig) error {
	return writeDevConfig(filepath.Join(projectDir, LocalConfigFile), cfg)
}

// WriteGlobalDevConfig persists developer config to ~/.podpkg/config.toml.
func WriteGlobalDevConfig(cfg *DevConfig) error {
	dir, err := GlobalConfigDir()
	if err != nil {
		return err
	}
	return writeDevConfig(filepath.Join(dir, "config.toml"), cfg)
}

func writeDevConfig(path string, cfg *DevConfig) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling dev config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
