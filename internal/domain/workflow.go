package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status is a project-level status definition.
type Status struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name" toml:"display_name"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	IsFinal     bool   `json:"is_final" yaml:"is_final" toml:"is_final"`
	IsDefault   bool   `json:"is_default" yaml:"is_default" toml:"is_default"`
}

// IssueTypeDef describes one issue type. Workflow order is the canonical
// progression used for display; it does not gate transitions.
type IssueTypeDef struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	DisplayName string   `json:"display_name" yaml:"display_name" toml:"display_name"`
	Workflow    []string `json:"workflow" yaml:"workflow" toml:"workflow"`
	IsActive    bool     `json:"is_active" yaml:"is_active" toml:"is_active"`
}

// ProjectConfig holds a project's issue-type and status definitions.
type ProjectConfig struct {
	IssueTypes []IssueTypeDef `json:"issue_types" yaml:"issue_types" toml:"issue_types"`
	Statuses   []Status       `json:"statuses" yaml:"statuses" toml:"statuses"`
}

// IssueType looks up an issue type by name.
func (c *ProjectConfig) IssueType(name string) (IssueTypeDef, bool) {
	if c == nil {
		return IssueTypeDef{}, false
	}
	for _, t := range c.IssueTypes {
		if t.Name == name {
			return t, true
		}
	}
	return IssueTypeDef{}, false
}

// Status looks up a status definition by name.
func (c *ProjectConfig) Status(name string) (Status, bool) {
	if c == nil {
		return Status{}, false
	}
	for _, s := range c.Statuses {
		if s.Name == name {
			return s, true
		}
	}
	return Status{}, false
}

// IsEmpty reports whether the configuration defines nothing.
func (c *ProjectConfig) IsEmpty() bool {
	return c == nil || (len(c.IssueTypes) == 0 && len(c.Statuses) == 0)
}

// Validate checks structural rules: names are present and unique,
// workflows list each status at most once and hold at most one default. Workflows may reference statuses
// with no definition; those render with a synthesized label.
func (c *ProjectConfig) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error

	seenStatus := make(map[string]bool, len(c.Statuses))
	for i, s := range c.Statuses {
		switch {
		case strings.TrimSpace(s.Name) == "":
			errs = append(errs, fmt.Errorf("statuses[%d].name is required", i))
		case seenStatus[s.Name]:
			errs = append(errs, fmt.Errorf("statuses[%d]: duplicate status %q", i, s.Name))
		}
		seenStatus[s.Name] = true
	}

	seenType := make(map[string]bool, len(c.IssueTypes))
	for i, t := range c.IssueTypes {
		switch {
		case strings.TrimSpace(t.Name) == "":
			errs = append(errs, fmt.Errorf("issue_types[%d].name is required", i))
		case seenType[t.Name]:
			errs = append(errs, fmt.Errorf("issue_types[%d]: duplicate issue type %q", i, t.Name))
		}
		seenType[t.Name] = true

		inWorkflow := make(map[string]bool, len(t.Workflow))
		for j, name := range t.Workflow {
			if strings.TrimSpace(name) == "" {
				errs = append(errs, fmt.Errorf("issue_types[%d].workflow[%d] is empty", i, j))
				continue
			}
			if inWorkflow[name] {
				errs = append(errs, fmt.Errorf("issue_types[%d].workflow: status %q listed twice", i, name))
			}
			inWorkflow[name] = true
		}

		defaults := 0
		for name := range inWorkflow {
			if s, ok := c.Status(name); ok && s.IsDefault {
				defaults++
			}
		}
		if defaults > 1 {
			errs = append(errs, fmt.Errorf("issue_types[%d].workflow has %d default statuses, at most one allowed", i, defaults))
		}
	}

	return errors.Join(errs...)
}
