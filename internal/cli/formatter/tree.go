package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one node of a tree display.
type TreeItem struct {
	Key       string
	Title     string
	Level     int
	IsLast    bool
	Final     bool
	Highlight bool
	Detail    string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree using box-drawing
// connectors. Detail badges are right-aligned in a shared column.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	widest := 0
	// lastAt[l] records whether the most recent item at level l closed its
	// sibling group, which decides between a pipe and blank indentation.
	lastAt := map[int]bool{}
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for l := 1; l < item.Level; l++ {
				if lastAt[l] {
					prefix += "   "
				} else {
					prefix += treePipe
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}
		lastAt[item.Level] = item.IsLast

		title := item.Title
		switch {
		case item.Highlight:
			title = StyleBold.Render(title)
		case item.Final:
			title = Dim(title)
		}
		if item.Key != "" {
			title = StyleDim.Render(item.Key) + " " + title
		}
		if item.Final {
			title = StyleGreen.Render("✔ ") + title
		}

		contents[idx] = StyleDim.Render(prefix) + title
		widest = max(widest, lipgloss.Width(contents[idx]))
	}

	var b strings.Builder
	for idx, item := range items {
		b.WriteString(contents[idx])
		if item.Detail != "" {
			pad := widest - lipgloss.Width(contents[idx]) + colGap
			b.WriteString(strings.Repeat(" ", pad))
			b.WriteString(StyleBlue.Render("[ " + item.Detail + " ]"))
		}
		if idx < len(items)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
