// Package config provides configuration management for the querykit CLI.
//
// Settings come from four layers, lowest precedence first: built-in
// defaults, a querykit.yaml file (searched upward from the working
// directory), QUERYKIT_-prefixed environment variables, and command-line
// flags.
package config

import (
	"strings"

	"github.com/leapstack-labs/querykit/pkg/adapter"
)

// Config holds all CLI configuration options.
type Config struct {
	Target  *TargetConfig `koanf:"target"`
	History HistoryConfig `koanf:"history"`
	Gateway GatewayConfig `koanf:"gateway"`

	// OutputFormat selects the default result rendering: table, json,
	// csv or md.
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`

	// ProjectRoot is the directory the config file was found in, or the
	// working directory. Relative paths resolve against it.
	ProjectRoot string `koanf:"-"`
}

// TargetConfig describes the database statements run against.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Path     string            `koanf:"path"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
}

// AdapterConfig converts the target into the adapter package's form.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     strings.ToLower(t.Type),
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
	}
}

// HistoryConfig controls the run-history store.
type HistoryConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// GatewayConfig holds settings for the HTTP gateway.
type GatewayConfig struct {
	Addr string `koanf:"addr"`
}

// Default configuration values. An empty output format means auto: table
// on a terminal, csv otherwise.
const (
	DefaultTargetType  = "sqlite"
	DefaultHistoryPath = ".querykit/history.db"
	DefaultGatewayAddr = ":8765"
)
