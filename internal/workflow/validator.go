package workflow

import (
	"context"

	"github.com/alexanderramin/issueflow/internal/domain"
)

// Decision is the outcome of a transition check.
type Decision struct {
	Allowed       bool
	NoOp          bool
	Reason        string
	IssueType     string
	Status        string
	ValidStatuses []string
}

// Err returns nil for allowed decisions and a *domain.TransitionError otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return domain.NewTransitionError(d.IssueType, d.Status, d.ValidStatuses)
}

// Validator decides whether an issue may move to a proposed status.
// Any workflow member is reachable from any other in one step; the workflow
// order is not a gate.
type Validator struct {
	registry *Registry
}

func NewValidator(registry *Registry) *Validator {
	return &Validator{registry: registry}
}

// Registry returns the registry the validator resolves workflows with.
func (v *Validator) Registry() *Registry {
	return v.registry
}

// CanTransition resolves the issue's workflow and evaluates proposed against it.
func (v *Validator) CanTransition(ctx context.Context, issue *domain.Issue, proposed string) (Decision, error) {
	if issue.Status == proposed {
		return Decision{Allowed: true, NoOp: true, IssueType: issue.Type, Status: proposed}, nil
	}
	statuses, err := v.registry.StatusesFor(ctx, issue.ProjectID, issue.Type)
	if err != nil {
		return Decision{}, err
	}
	return Evaluate(issue, proposed, statuses), nil
}

// Evaluate decides a transition against an already resolved workflow.
func Evaluate(issue *domain.Issue, proposed string, workflow []domain.Status) Decision {
	d := Decision{IssueType: issue.Type, Status: proposed, ValidStatuses: Names(workflow)}
	if issue.Status == proposed {
		d.Allowed = true
		d.NoOp = true
		return d
	}
	for _, name := range d.ValidStatuses {
		if name == proposed {
			d.Allowed = true
			return d
		}
	}
	d.Reason = domain.TransitionReason(issue.Type, proposed, d.ValidStatuses)
	return d
}

// Names returns the status names in order.
func Names(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = s.Name
	}
	return out
}
