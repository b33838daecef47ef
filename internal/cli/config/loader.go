package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey stores the logger in command contexts.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for
// config files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config
)

// findConfigFile finds the config file to use.
// Priority: explicit path > querykit.yaml > querykit.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat("querykit.yaml"); err == nil {
		return "querykit.yaml"
	}
	if _, err := os.Stat("querykit.yml"); err == nil {
		return "querykit.yml"
	}
	return ""
}

// configExistsIn checks if a querykit config file exists in the directory.
func configExistsIn(dir string) bool {
	for _, name := range []string{"querykit.yaml", "querykit.yml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// findProjectRootUpward searches upward from startDir for a querykit
// config file. Returns empty string if not found within
// maxUpwardSearchLevels.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configExistsIn(dir) {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot picks the directory relative paths resolve against.
// Priority: the explicit config file's directory, a directory found by
// upward search, then the working directory.
func inferProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		if root := findProjectRootUpward(cwd); root != "" {
			return root
		}
	}

	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not
// absolute. Empty paths and ":memory:" pass through unchanged.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// Load builds the configuration from defaults, config file, environment
// variables, and flags. Precedence (highest to lowest): flags > env vars >
// config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile)

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"target.type":     DefaultTargetType,
		"history.enabled": true,
		"history.path":    DefaultHistoryPath,
		"gateway.addr":    DefaultGatewayAddr,
		"verbose":         false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file, searching the project root when no
	// explicit file was given
	if cfgFile == "" {
		for _, name := range []string{"querykit.yaml", "querykit.yml"} {
			candidate := filepath.Join(projectRoot, name)
			if _, err := os.Stat(candidate); err == nil {
				cfgFile = candidate
				break
			}
		}
	}
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (QUERYKIT_ prefix).
	// Transform: QUERYKIT_TARGET_PASSWORD -> target.password
	if err := k.Load(env.Provider("QUERYKIT_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "QUERYKIT_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}

			// Short flags address nested config keys
			switch f.Name {
			case "adapter":
				return "target.type", posflag.FlagVal(flags, f)
			case "db":
				return "target.path", posflag.FlagVal(flags, f)
			}

			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = projectRoot
	if cfg.Target == nil {
		cfg.Target = &TargetConfig{Type: DefaultTargetType}
	}

	// Expand ${VAR} references and resolve relative paths
	expandTargetEnvVars(cfg.Target)
	cfg.Target.Path = resolvePathRelativeTo(cfg.Target.Path, projectRoot)
	cfg.History.Path = resolvePathRelativeTo(cfg.History.Path, projectRoot)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	currentConfig = &cfg
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// Available after Load has been called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// WithLogger stores the logger in a context for retrieval by commands.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// expandEnvVars expands ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Keep the original if not set
	})
}

// expandTargetEnvVars expands environment variables in sensitive target
// fields, so credentials never need to live in the config file.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.User = expandEnvVars(t.User)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.Path = expandEnvVars(t.Path)
}
