package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
)

// StatusLookup resolves a status name to its display record.
type StatusLookup func(name string) domain.Status

func statusFor(lookup StatusLookup, name string) domain.Status {
	if lookup == nil {
		return domain.Status{Name: name, DisplayName: name}
	}
	return lookup(name)
}

// FormatIssue renders a single issue's details.
func FormatIssue(issue *domain.Issue, lookup StatusLookup) string {
	var b strings.Builder
	b.WriteString(Bold(issue.DisplayKey()+"  "+issue.Title) + "\n\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", StyleDim.Render(fmt.Sprintf("%-12s", label)), value)
	}
	row("Type", TypeBadge(issue.Type))
	row("Status", StatusPill(statusFor(lookup, issue.Status)))
	if issue.HasParent() {
		row("Parent", TruncID(issue.ParentID()))
	}
	row("ID", TruncID(issue.ID))
	row("Updated", HumanTimestamp(issue.UpdatedAt))
	if issue.Description != "" {
		b.WriteString("\n" + issue.Description + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatIssueList renders issues as a table.
func FormatIssueList(issues []*domain.Issue, lookup StatusLookup) string {
	headers := []string{"KEY", "TYPE", "STATUS", "TITLE"}
	rows := make([][]string, 0, len(issues))
	for _, i := range issues {
		rows = append(rows, []string{
			i.DisplayKey(),
			TypeBadge(i.Type),
			StatusPill(statusFor(lookup, i.Status)),
			Truncate(i.Title, 60),
		})
	}
	return RenderTable(headers, rows)
}

// FormatHierarchy renders the issue between its parent and children, then
// its typed links.
func FormatHierarchy(h *contract.Hierarchy, lookup StatusLookup) string {
	var items []TreeItem
	level := 0
	node := func(i *domain.Issue, lvl int, last, highlight bool) TreeItem {
		st := statusFor(lookup, i.Status)
		label := st.DisplayName
		if label == "" {
			label = st.Name
		}
		return TreeItem{
			Key:       i.DisplayKey(),
			Title:     i.Title,
			Level:     lvl,
			IsLast:    last,
			Final:     st.IsFinal,
			Highlight: highlight,
			Detail:    label,
		}
	}
	if h.Parent != nil {
		items = append(items, node(h.Parent, 0, true, false))
		level = 1
	}
	items = append(items, node(h.Issue, level, true, true))
	for idx, c := range h.Children {
		items = append(items, node(c, level+1, idx == len(h.Children)-1, false))
	}

	out := Header("Hierarchy") + "\n" + RenderTree(items)
	if len(h.Linked) == 0 {
		return out
	}

	rows := make([][]string, 0, len(h.Linked))
	for _, l := range h.Linked {
		arrow := "→"
		if l.Direction == domain.DirectionIncoming {
			arrow = "←"
		}
		rows = append(rows, []string{
			string(l.LinkType),
			arrow,
			l.Issue.DisplayKey(),
			Truncate(l.Issue.Title, 50),
		})
	}
	return out + "\n\n" + Header("Links") + "\n" + RenderTable([]string{"TYPE", "", "ISSUE", "TITLE"}, rows)
}
