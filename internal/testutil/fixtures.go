package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/google/uuid"
)

var (
	testKeyCounter atomic.Int64
	testSeqCounter atomic.Int64
)

// Project options
type ProjectOption func(*domain.Project)

func WithKey(key string) ProjectOption {
	return func(p *domain.Project) {
		p.Key = key
	}
}

func defaultKey(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testKeyCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n%100)
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC().Truncate(time.Second)
	p := &domain.Project{
		ID:        uuid.New().String(),
		Key:       defaultKey(name),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Issue options
type IssueOption func(*domain.Issue)

func WithIssueType(t string) IssueOption {
	return func(i *domain.Issue) {
		i.Type = t
	}
}

func WithStatus(s string) IssueOption {
	return func(i *domain.Issue) {
		i.Status = s
	}
}

func WithParent(id string) IssueOption {
	return func(i *domain.Issue) {
		i.Parent = domain.Ref(id)
	}
}

func WithDescription(d string) IssueOption {
	return func(i *domain.Issue) {
		i.Description = d
	}
}

func WithSeq(seq int) IssueOption {
	return func(i *domain.Issue) {
		i.Seq = seq
	}
}

// NewTestIssue builds a task in backlog for project. Seq values come from a
// process-wide counter so keys never collide across fixtures.
func NewTestIssue(project *domain.Project, title string, opts ...IssueOption) *domain.Issue {
	now := time.Now().UTC().Truncate(time.Second)
	i := &domain.Issue{
		ID:        uuid.New().String(),
		ProjectID: project.ID,
		Seq:       int(testSeqCounter.Add(1)),
		Title:     title,
		Type:      domain.TypeTask,
		Status:    "backlog",
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.Key = project.IssueKey(i.Seq)
	return i
}

// BugWorkflowConfig is a project configuration with a bug type whose
// workflow is [backlog, development, qa, released].
func BugWorkflowConfig() *domain.ProjectConfig {
	return &domain.ProjectConfig{
		IssueTypes: []domain.IssueTypeDef{
			{Name: domain.TypeBug, DisplayName: "Bug", Workflow: []string{"backlog", "development", "qa", "released"}, IsActive: true},
			{Name: domain.TypeTask, DisplayName: "Task", IsActive: true},
			{Name: domain.TypeSubtask, DisplayName: "Subtask", IsActive: true},
			{Name: domain.TypeEpic, DisplayName: "Epic", IsActive: true},
		},
		Statuses: []domain.Status{
			{Name: "backlog", DisplayName: "Backlog", IsDefault: true},
			{Name: "development", DisplayName: "Development"},
			{Name: "qa", DisplayName: "QA", Color: "#fe8019"},
			{Name: "released", DisplayName: "Released", IsFinal: true},
		},
	}
}
