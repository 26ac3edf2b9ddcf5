package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

// Config holds all configuration options.
type Config struct {
	LoopDir  string `json:"loop_dir"`  //nolint:tagliatelle // snake_case for config file
	PlanFile string `json:"plan_file"` //nolint:tagliatelle // snake_case for config file
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LoopDir:  "loops",
		PlanFile: "workstream_plan.md",
	}
}

// ConfigFileName is the default project config file name.
const ConfigFileName = ".ora.json"

var (
	errConfigFileNotFound = errors.New("config file not found")
	errConfigInvalid      = errors.New("invalid config file")
	errLoopDirEmpty       = errors.New("loop_dir cannot be empty")
)

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/ora/config.json if set, otherwise
// ~/.config/ora/config.json. Returns empty string if the home directory
// cannot be determined.
func getGlobalConfigPath(env []string) string {
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, "XDG_CONFIG_HOME="); ok {
			return filepath.Join(after, "ora", "config.json")
		}
	}

	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "ora", "config.json")
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".config", "ora", "config.json")
	}

	return ""
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config file at default location (.ora.json, if exists)
// 4. Explicit config file via configPath (if non-empty)
// 5. CLI overrides.
func LoadConfig(workDir, configPath string, overrides Config, env []string) (Config, ConfigSources, error) {
	cfg := DefaultConfig()

	var sources ConfigSources

	globalPath := getGlobalConfigPath(env)
	if globalPath != "" {
		globalCfg, err := parseConfigFile(globalPath)
		if err == nil {
			sources.Global = globalPath
			cfg = mergeConfig(cfg, globalCfg)
		} else if !errors.Is(err, errConfigFileNotFound) {
			return Config{}, ConfigSources{}, err
		}
	}

	projectPath := filepath.Join(workDir, ConfigFileName)
	explicit := configPath != ""

	if explicit {
		projectPath = configPath
	}

	projectCfg, err := parseConfigFile(projectPath)

	switch {
	case err == nil:
		sources.Project = projectPath
		cfg = mergeConfig(cfg, projectCfg)
	case errors.Is(err, errConfigFileNotFound) && !explicit:
		// Missing project config is fine; an explicitly named one is not.
	default:
		return Config{}, ConfigSources{}, err
	}

	cfg = mergeConfig(cfg, overrides)

	if cfg.LoopDir == "" {
		return Config{}, ConfigSources{}, errLoopDirEmpty
	}

	return cfg, sources, nil
}

// parseConfigFile reads a JSONC config file. Comments and trailing commas are
// allowed.
func parseConfigFile(path string) (Config, error) {
	content, err := os.ReadFile(path) //nolint:gosec // config path comes from user
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
		}

		return Config{}, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(content)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", errConfigInvalid, path, err)
	}

	var cfg Config

	err = json.Unmarshal(standardized, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", errConfigInvalid, path, err)
	}

	return cfg, nil
}

// mergeConfig overlays non-empty fields of overlay onto base.
func mergeConfig(base, overlay Config) Config {
	if overlay.LoopDir != "" {
		base.LoopDir = overlay.LoopDir
	}

	if overlay.PlanFile != "" {
		base.PlanFile = overlay.PlanFile
	}

	return base
}
