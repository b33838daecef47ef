// Package script loads SQL scripts with optional YAML frontmatter.
//
// Frontmatter is carried in a leading /*--- ... ---*/ comment block so the
// file stays valid SQL for every engine:
//
//	/*---
//	name: active_users
//	description: Users seen in the last 30 days
//	format: json
//	params:
//	  - 30
//	---*/
//	SELECT * FROM users WHERE last_seen > ?;
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a SQL script with its parsed frontmatter.
type Script struct {
	Name        string
	Description string
	Format      string // preferred output format: table, json, csv, md
	Params      []any  // positional bind arguments

	SQL            string // statement text after the frontmatter block
	Path           string // source file, empty for inline scripts
	HasFrontmatter bool
}

// frontmatterPattern matches /*--- ... ---*/ blocks at the top of a file.
var frontmatterPattern = regexp.MustCompile(`(?s)^\s*/\*---\s*\n(.*?)\s*---\*/`)

// validFormats are the output formats frontmatter may request.
var validFormats = map[string]bool{
	"table": true,
	"json":  true,
	"csv":   true,
	"md":    true,
}

// Load reads a script file and parses its frontmatter. The script name
// defaults to the file name without its .sql extension.
func Load(path string) (*Script, error) {
	content, err := os.ReadFile(path) //nolint:gosec // user-provided script path
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	s, err := Parse(string(content))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return nil, err
	}

	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), ".sql")
	}
	return s, nil
}

// Parse extracts frontmatter from SQL content. Content without a
// frontmatter block is returned unchanged as the script SQL.
func Parse(content string) (*Script, error) {
	s := &Script{SQL: strings.TrimSpace(content)}

	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) < 2 {
		return s, nil
	}

	s.HasFrontmatter = true
	s.SQL = strings.TrimSpace(frontmatterPattern.ReplaceAllString(content, ""))

	if err := parseFrontmatterYAML(matches[1], s); err != nil {
		return nil, err
	}
	return s, nil
}

// frontmatterYAML is the internal unmarshal target.
type frontmatterYAML struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Params      []any  `yaml:"params"`
}

// parseFrontmatterYAML parses YAML content with strict field validation.
func parseFrontmatterYAML(yamlContent string, s *Script) error {
	// Decode into a map first to reject unknown fields
	var rawMap map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &rawMap); err != nil {
		return &ParseError{Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	knownFields := map[string]bool{
		"name":        true,
		"description": true,
		"format":      true,
		"params":      true,
	}
	for field := range rawMap {
		if !knownFields[field] {
			return &UnknownFieldError{Field: field}
		}
	}

	var fm frontmatterYAML
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		return &ParseError{Message: fmt.Sprintf("failed to parse frontmatter: %v", err)}
	}

	if fm.Format != "" && !validFormats[fm.Format] {
		return &ParseError{
			Message: fmt.Sprintf("invalid format value: %q, must be one of: table, json, csv, md", fm.Format),
		}
	}

	s.Name = fm.Name
	s.Description = fm.Description
	s.Format = fm.Format
	s.Params = fm.Params
	return nil
}

// ParseError represents a frontmatter parsing error.
type ParseError struct {
	File    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError is returned when frontmatter contains an
// unrecognized field.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown frontmatter field: %q (known fields: name, description, format, params)", e.Field)
}
