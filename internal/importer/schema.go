package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ParseFormat accepts a format name or a file extension (with or without
// the dot).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported config format %q (want yaml, toml or json)", s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// ConfigSchema is the file shape of a project's workflow configuration.
// Project optionally names the project key the file belongs to.
type ConfigSchema struct {
	Project    string            `json:"project,omitempty" yaml:"project,omitempty" toml:"project,omitempty"`
	Statuses   []StatusImport    `json:"statuses" yaml:"statuses" toml:"statuses"`
	IssueTypes []IssueTypeImport `json:"issue_types" yaml:"issue_types" toml:"issue_types"`
}

// StatusImport defines one status.
type StatusImport struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty" toml:"display_name,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Final       bool   `json:"final,omitempty" yaml:"final,omitempty" toml:"final,omitempty"`
	Default     bool   `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
}

// IssueTypeImport defines one issue type. Active defaults to true.
type IssueTypeImport struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	DisplayName string   `json:"display_name,omitempty" yaml:"display_name,omitempty" toml:"display_name,omitempty"`
	Workflow    []string `json:"workflow,omitempty" yaml:"workflow,omitempty" toml:"workflow,omitempty"`
	Active      *bool    `json:"active,omitempty" yaml:"active,omitempty" toml:"active,omitempty"`
}

// LoadConfigSchema reads and parses a configuration file, choosing the
// decoder by extension.
func LoadConfigSchema(path string) (*ConfigSchema, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := ParseConfigSchema(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return schema, nil
}

// ParseConfigSchema decodes data. Unknown keys are rejected in every format
// so typos surface instead of silently falling back to defaults.
func ParseConfigSchema(data []byte, format Format) (*ConfigSchema, error) {
	var schema ConfigSchema
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&schema); err != nil {
			if len(bytes.TrimSpace(data)) == 0 {
				return &schema, nil
			}
			return nil, err
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &schema)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&schema); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return &schema, nil
}

// Encode writes schema in format.
func Encode(schema *ConfigSchema, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(schema); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(schema); err != nil {
			return nil, err
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(schema); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return buf.Bytes(), nil
}
