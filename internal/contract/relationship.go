package contract

import "github.com/alexanderramin/issueflow/internal/domain"

// LinkRequest asks for a relationship between two issues. With ParentChild
// set the request edits the hierarchy and LinkType is ignored; otherwise a
// typed link is recorded.
type LinkRequest struct {
	IssueID     domain.IssueRef    `json:"issue_id"`
	TargetID    domain.IssueRef    `json:"target_issue_id"`
	LinkType    domain.LinkType    `json:"link_type,omitempty"`
	ParentChild domain.ParentChild `json:"parent_child,omitempty"`
}

// UnlinkRequest removes every relationship between two issues.
type UnlinkRequest struct {
	IssueID  domain.IssueRef `json:"issue_id"`
	TargetID domain.IssueRef `json:"target_issue_id"`
}

// ReparentRequest moves an issue under a new parent. An empty ParentID
// detaches it.
type ReparentRequest struct {
	IssueID  domain.IssueRef `json:"issue_id"`
	ParentID domain.IssueRef `json:"parent_issue_id"`
}

// SubtaskRequest creates a subtask under ParentID.
type SubtaskRequest struct {
	Title       string          `json:"title"`
	ParentID    domain.IssueRef `json:"parent_issue_id"`
	Description string          `json:"description,omitempty"`
	Status      string          `json:"status,omitempty"`
}

// LinkedIssue is one generic link seen from the queried issue.
type LinkedIssue struct {
	Issue     *domain.Issue        `json:"issue"`
	LinkType  domain.LinkType      `json:"link_type"`
	Direction domain.LinkDirection `json:"direction"`
}

// Hierarchy is the relationship neighbourhood of one issue.
type Hierarchy struct {
	Issue    *domain.Issue   `json:"issue"`
	Parent   *domain.Issue   `json:"parent"`
	Children []*domain.Issue `json:"children"`
	Linked   []LinkedIssue   `json:"linked"`
}

// NewHierarchy returns a hierarchy for issue with empty, non-nil slices so
// JSON consumers always see arrays.
func NewHierarchy(issue *domain.Issue) *Hierarchy {
	return &Hierarchy{
		Issue:    issue,
		Children: []*domain.Issue{},
		Linked:   []LinkedIssue{},
	}
}

// LinkedOfType filters the linked issues by type.
func (h *Hierarchy) LinkedOfType(t domain.LinkType) []LinkedIssue {
	var out []LinkedIssue
	for _, l := range h.Linked {
		if l.LinkType == t {
			out = append(out, l)
		}
	}
	return out
}

// ChildIDs lists the children's ids in order.
func (h *Hierarchy) ChildIDs() []string {
	ids := make([]string, len(h.Children))
	for i, c := range h.Children {
		ids[i] = c.ID
	}
	return ids
}
