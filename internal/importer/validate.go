package importer

import (
	"fmt"
	"regexp"

	"github.com/alexanderramin/issueflow/internal/workflow"
)

var (
	validName  = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
	validColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// ValidateConfigSchema checks the schema for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateConfigSchema(schema *ConfigSchema) []error {
	var errs []error

	declared := make(map[string]StatusImport)
	errs = append(errs, validateStatuses(schema.Statuses, declared)...)
	errs = append(errs, validateIssueTypes(schema.IssueTypes, declared)...)

	if len(schema.Statuses) == 0 && len(schema.IssueTypes) == 0 {
		errs = append(errs, fmt.Errorf("configuration declares no statuses and no issue types"))
	}
	return errs
}

func validateStatuses(statuses []StatusImport, declared map[string]StatusImport) []error {
	var errs []error
	for i, s := range statuses {
		prefix := fmt.Sprintf("statuses[%d]", i)
		if s.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if !validName.MatchString(s.Name) {
			errs = append(errs, fmt.Errorf("%s.name %q must be lowercase letters, digits, '_' or '-'", prefix, s.Name))
		}
		if s.Color != "" && !validColor.MatchString(s.Color) {
			errs = append(errs, fmt.Errorf("%s.color %q is not a #rgb or #rrggbb value", prefix, s.Color))
		}
		if _, dup := declared[s.Name]; dup {
			errs = append(errs, fmt.Errorf("%s: duplicate status %q", prefix, s.Name))
			continue
		}
		declared[s.Name] = s
	}
	return errs
}

func validateIssueTypes(types []IssueTypeImport, declared map[string]StatusImport) []error {
	var errs []error
	known := make(map[string]bool, len(declared))
	for name := range declared {
		known[name] = true
	}
	for _, s := range workflow.DefaultStatuses() {
		known[s.Name] = true
	}

	seen := make(map[string]bool)
	for i, t := range types {
		prefix := fmt.Sprintf("issue_types[%d]", i)
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if !validName.MatchString(t.Name) {
				errs = append(errs, fmt.Errorf("%s.name %q must be lowercase letters, digits, '_' or '-'", prefix, t.Name))
			}
			if seen[t.Name] {
				errs = append(errs, fmt.Errorf("%s: duplicate issue type %q", prefix, t.Name))
			}
			seen[t.Name] = true
		}

		inWorkflow := make(map[string]bool)
		defaults := 0
		for j, name := range t.Workflow {
			switch {
			case name == "":
				errs = append(errs, fmt.Errorf("%s.workflow[%d] is empty", prefix, j))
				continue
			case !known[name]:
				errs = append(errs, fmt.Errorf("%s.workflow[%d]: unknown status %q (declare it under statuses)", prefix, j, name))
			case inWorkflow[name]:
				errs = append(errs, fmt.Errorf("%s.workflow: status %q listed twice", prefix, name))
				continue
			}
			inWorkflow[name] = true
			if declared[name].Default {
				defaults++
			}
		}
		if defaults > 1 {
			errs = append(errs, fmt.Errorf("%s.workflow has %d default statuses, at most one allowed", prefix, defaults))
		}
	}
	return errs
}
