package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alexanderramin/issueflow/internal/domain"
)

// Built-in status names used when a project has no workflow for a type.
const (
	StatusBacklog       = "backlog"
	StatusAnalysisReady = "analysis_ready"
	StatusDevelopment   = "development"
	StatusAcceptance    = "acceptance"
	StatusReleased      = "released"
)

var defaultStatuses = []domain.Status{
	{Name: StatusBacklog, DisplayName: "Backlog", Color: "#a89984", IsDefault: true},
	{Name: StatusAnalysisReady, DisplayName: "Analysis Ready", Color: "#83a598"},
	{Name: StatusDevelopment, DisplayName: "Development", Color: "#fabd2f"},
	{Name: StatusAcceptance, DisplayName: "Acceptance", Color: "#d3869b"},
	{Name: StatusReleased, DisplayName: "Released", Color: "#b8bb26", IsFinal: true},
}

// DefaultStatuses returns a copy of the built-in ordered status table.
func DefaultStatuses() []domain.Status {
	out := make([]domain.Status, len(defaultStatuses))
	copy(out, defaultStatuses)
	return out
}

// ConfigProvider supplies per-project issue-type and status definitions.
// A project without stored configuration may return (nil, nil) or an error
// wrapping domain.ErrNotFound.
type ConfigProvider interface {
	ProjectConfig(ctx context.Context, projectID string) (*domain.ProjectConfig, error)
}

// ConfigProviderFunc adapts a function to ConfigProvider.
type ConfigProviderFunc func(ctx context.Context, projectID string) (*domain.ProjectConfig, error)

func (f ConfigProviderFunc) ProjectConfig(ctx context.Context, projectID string) (*domain.ProjectConfig, error) {
	return f(ctx, projectID)
}

// Registry resolves the ordered legal statuses for an issue type within a
// project. Project configuration overrides the injected default table.
type Registry struct {
	provider ConfigProvider
	defaults []domain.Status
}

// Option configures a Registry.
type Option func(*Registry)

// WithDefaults replaces the fallback status table.
func WithDefaults(statuses []domain.Status) Option {
	return func(r *Registry) {
		r.defaults = make([]domain.Status, len(statuses))
		copy(r.defaults, statuses)
	}
}

// NewRegistry creates a registry backed by provider. A nil provider behaves
// as if no project has configuration.
func NewRegistry(provider ConfigProvider, opts ...Option) *Registry {
	r := &Registry{provider: provider, defaults: DefaultStatuses()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithProvider returns a registry sharing this one's defaults but reading
// configuration from p. Used to scope reads to a transaction.
func (r *Registry) WithProvider(p ConfigProvider) *Registry {
	return &Registry{provider: p, defaults: r.defaults}
}

// Defaults returns a copy of the registry's fallback table.
func (r *Registry) Defaults() []domain.Status {
	out := make([]domain.Status, len(r.defaults))
	copy(out, r.defaults)
	return out
}

// Config loads the project's configuration. It returns (nil, nil) when the
// project has none.
func (r *Registry) Config(ctx context.Context, projectID string) (*domain.ProjectConfig, error) {
	if r.provider == nil {
		return nil, nil
	}
	cfg, err := r.provider.ProjectConfig(ctx, projectID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading config for project %s: %w", projectID, err)
	}
	return cfg, nil
}

// Resolve returns the ordered workflow for issueType under cfg. Unknown
// types and types with an empty workflow fall back to the default table.
// Workflow names without a Status definition get a synthesized record.
func (r *Registry) Resolve(cfg *domain.ProjectConfig, issueType string) []domain.Status {
	def, ok := cfg.IssueType(issueType)
	if !ok || len(def.Workflow) == 0 {
		return r.Defaults()
	}
	out := make([]domain.Status, 0, len(def.Workflow))
	for _, name := range def.Workflow {
		out = append(out, r.lookup(cfg, name))
	}
	return out
}

// StatusesFor loads the project's configuration and resolves issueType.
func (r *Registry) StatusesFor(ctx context.Context, projectID, issueType string) ([]domain.Status, error) {
	cfg, err := r.Config(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return r.Resolve(cfg, issueType), nil
}

// DefaultStatus returns the status a new issue of issueType receives: the
// first workflow member flagged IsDefault, else the first member.
func (r *Registry) DefaultStatus(cfg *domain.ProjectConfig, issueType string) domain.Status {
	statuses := r.Resolve(cfg, issueType)
	for _, s := range statuses {
		if s.IsDefault {
			return s
		}
	}
	if len(statuses) == 0 {
		return domain.Status{Name: StatusBacklog, DisplayName: DisplayLabel(StatusBacklog)}
	}
	return statuses[0]
}

// DefaultStatusFor is DefaultStatus with the configuration loaded for projectID.
func (r *Registry) DefaultStatusFor(ctx context.Context, projectID, issueType string) (string, error) {
	cfg, err := r.Config(ctx, projectID)
	if err != nil {
		return "", err
	}
	return r.DefaultStatus(cfg, issueType).Name, nil
}

// AllStatuses returns every status a board should show for cfg: the default
// table first, then configured statuses, then names referenced only by a
// workflow. A configured status sharing a default's name replaces it in place.
func (r *Registry) AllStatuses(cfg *domain.ProjectConfig) []domain.Status {
	out := make([]domain.Status, 0, len(r.defaults))
	index := make(map[string]int)
	add := func(s domain.Status) {
		if i, ok := index[s.Name]; ok {
			out[i] = s
			return
		}
		index[s.Name] = len(out)
		out = append(out, s)
	}
	for _, s := range r.defaults {
		add(s)
	}
	if cfg == nil {
		return out
	}
	for _, s := range cfg.Statuses {
		add(s)
	}
	for _, t := range cfg.IssueTypes {
		for _, name := range t.Workflow {
			if _, ok := index[name]; !ok {
				add(r.lookup(cfg, name))
			}
		}
	}
	return out
}

// IssueTypes lists the type names new issues may use under cfg: active
// configured types, or the default vocabulary when none are configured.
func (r *Registry) IssueTypes(cfg *domain.ProjectConfig) []string {
	if cfg == nil || len(cfg.IssueTypes) == 0 {
		out := make([]string, len(domain.DefaultIssueTypes))
		copy(out, domain.DefaultIssueTypes)
		return out
	}
	var out []string
	for _, t := range cfg.IssueTypes {
		if t.IsActive {
			out = append(out, t.Name)
		}
	}
	return out
}

// DefaultConfig is the configuration reported for projects that have none:
// the default type vocabulary, each using the default workflow.
func (r *Registry) DefaultConfig() *domain.ProjectConfig {
	names := make([]string, len(r.defaults))
	for i, s := range r.defaults {
		names[i] = s.Name
	}
	cfg := &domain.ProjectConfig{Statuses: r.Defaults()}
	for _, t := range domain.DefaultIssueTypes {
		wf := make([]string, len(names))
		copy(wf, names)
		cfg.IssueTypes = append(cfg.IssueTypes, domain.IssueTypeDef{
			Name:        t,
			DisplayName: DisplayLabel(t),
			Workflow:    wf,
			IsActive:    true,
		})
	}
	return cfg
}

func (r *Registry) lookup(cfg *domain.ProjectConfig, name string) domain.Status {
	if s, ok := cfg.Status(name); ok {
		if s.DisplayName == "" {
			s.DisplayName = DisplayLabel(name)
		}
		return s
	}
	for _, s := range r.defaults {
		if s.Name == name {
			return s
		}
	}
	return domain.Status{Name: name, DisplayName: DisplayLabel(name)}
}

// DisplayLabel title-cases a status or type name: "analysis_ready" becomes
// "Analysis Ready".
func DisplayLabel(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + w[size:]
	}
	return strings.Join(words, " ")
}
