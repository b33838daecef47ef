package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/querykit/pkg/adapter"
)

// validOutputs are the result formats commands can render.
var validOutputs = map[string]bool{
	"table": true,
	"json":  true,
	"csv":   true,
	"md":    true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Target == nil {
		return fmt.Errorf("target configuration is required")
	}
	if err := c.Target.Validate(); err != nil {
		return err
	}
	if c.OutputFormat != "" && !validOutputs[c.OutputFormat] {
		return fmt.Errorf("invalid output format %q, must be one of: table, json, csv, md", c.OutputFormat)
	}
	return nil
}

// Validate checks the target against the registered adapters.
func (t *TargetConfig) Validate() error {
	if t.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !adapter.IsRegistered(strings.ToLower(t.Type)) {
		return fmt.Errorf("unknown adapter type %q (available: %s); check target.type in querykit.yaml",
			t.Type, strings.Join(adapter.List(), ", "))
	}
	return nil
}
