package importer

import (
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/workflow"
)

// Convert transforms a validated ConfigSchema into a domain.ProjectConfig.
// Call ValidateConfigSchema first; Convert assumes the schema is valid.
// Missing display names are derived from the status or type name.
func Convert(schema *ConfigSchema) *domain.ProjectConfig {
	cfg := &domain.ProjectConfig{
		Statuses:   make([]domain.Status, 0, len(schema.Statuses)),
		IssueTypes: make([]domain.IssueTypeDef, 0, len(schema.IssueTypes)),
	}
	for _, s := range schema.Statuses {
		cfg.Statuses = append(cfg.Statuses, domain.Status{
			Name:        s.Name,
			DisplayName: domain.CoalesceStr(s.DisplayName, workflow.DisplayLabel(s.Name)),
			Color:       s.Color,
			IsFinal:     s.Final,
			IsDefault:   s.Default,
		})
	}
	for _, t := range schema.IssueTypes {
		active := true
		if t.Active != nil {
			active = *t.Active
		}
		wf := make([]string, len(t.Workflow))
		copy(wf, t.Workflow)
		cfg.IssueTypes = append(cfg.IssueTypes, domain.IssueTypeDef{
			Name:        t.Name,
			DisplayName: domain.CoalesceStr(t.DisplayName, workflow.DisplayLabel(t.Name)),
			Workflow:    wf,
			IsActive:    active,
		})
	}
	return cfg
}

// FromProjectConfig builds a schema for exporting cfg.
func FromProjectConfig(projectKey string, cfg *domain.ProjectConfig) *ConfigSchema {
	schema := &ConfigSchema{Project: projectKey}
	if cfg == nil {
		return schema
	}
	for _, s := range cfg.Statuses {
		schema.Statuses = append(schema.Statuses, StatusImport{
			Name:        s.Name,
			DisplayName: s.DisplayName,
			Color:       s.Color,
			Final:       s.IsFinal,
			Default:     s.IsDefault,
		})
	}
	for _, t := range cfg.IssueTypes {
		var active *bool
		if !t.IsActive {
			inactive := false
			active = &inactive
		}
		schema.IssueTypes = append(schema.IssueTypes, IssueTypeImport{
			Name:        t.Name,
			DisplayName: t.DisplayName,
			Workflow:    t.Workflow,
			Active:      active,
		})
	}
	return schema
}
