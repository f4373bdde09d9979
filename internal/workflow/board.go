package workflow

import (
	"context"

	"github.com/alexanderramin/issueflow/internal/domain"
)

// Column is one board lane.
type Column struct {
	Status domain.Status
	Issues []*domain.Issue
}

// Board groups a project's issues by status. Issues whose status matches no
// column land in Unplaced.
type Board struct {
	Columns  []Column
	ByStatus map[string][]*domain.Issue
	Unplaced []*domain.Issue
}

// Column returns the lane for status.
func (b Board) Column(status string) (Column, bool) {
	for _, c := range b.Columns {
		if c.Status.Name == status {
			return c, true
		}
	}
	return Column{}, false
}

// Projector builds boards and answers drop-target questions. It holds no
// per-board state.
type Projector struct {
	registry  *Registry
	validator *Validator
}

func NewProjector(registry *Registry) *Projector {
	return &Projector{registry: registry, validator: NewValidator(registry)}
}

// Project buckets issues into the columns for cfg, preserving input order.
func (p *Projector) Project(issues []*domain.Issue, cfg *domain.ProjectConfig) Board {
	statuses := p.registry.AllStatuses(cfg)
	b := Board{
		Columns:  make([]Column, len(statuses)),
		ByStatus: make(map[string][]*domain.Issue, len(statuses)),
	}
	index := make(map[string]int, len(statuses))
	for i, s := range statuses {
		b.Columns[i] = Column{Status: s}
		index[s.Name] = i
	}
	for _, issue := range issues {
		i, ok := index[issue.Status]
		if !ok {
			b.Unplaced = append(b.Unplaced, issue)
			continue
		}
		b.Columns[i].Issues = append(b.Columns[i].Issues, issue)
		b.ByStatus[issue.Status] = append(b.ByStatus[issue.Status], issue)
	}
	return b
}

// IsValidDropTarget reports whether issue may be dropped on status. A drop
// on the current column is valid. Configuration load failures report false.
func (p *Projector) IsValidDropTarget(ctx context.Context, issue *domain.Issue, status string) bool {
	d, err := p.validator.CanTransition(ctx, issue, status)
	if err != nil {
		return false
	}
	return d.Allowed
}

// DropTargets loads the project's configuration and evaluates every board
// column for issue.
func (p *Projector) DropTargets(ctx context.Context, issue *domain.Issue) (map[string]bool, error) {
	cfg, err := p.registry.Config(ctx, issue.ProjectID)
	if err != nil {
		return nil, err
	}
	return p.DropTargetsWith(cfg, issue), nil
}

// DropTargetsWith evaluates every board column for issue under cfg.
func (p *Projector) DropTargetsWith(cfg *domain.ProjectConfig, issue *domain.Issue) map[string]bool {
	workflow := p.registry.Resolve(cfg, issue.Type)
	out := make(map[string]bool)
	for _, s := range p.registry.AllStatuses(cfg) {
		out[s.Name] = Evaluate(issue, s.Name, workflow).Allowed
	}
	return out
}
