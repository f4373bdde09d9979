package formatter

import (
	"strings"

	"github.com/alexanderramin/issueflow/internal/domain"
)

// FormatProjectList renders projects as a table.
func FormatProjectList(projects []*domain.Project) string {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		key := p.Key
		if key == "" {
			key = TruncID(p.ID)
		}
		rows = append(rows, []string{key, p.Name, HumanTimestamp(p.CreatedAt)})
	}
	return RenderTable([]string{"KEY", "NAME", "CREATED"}, rows)
}

// FormatProjectConfig renders statuses then issue types with their workflows.
func FormatProjectConfig(cfg *domain.ProjectConfig) string {
	if cfg == nil {
		return Dim("No configuration.")
	}
	statusRows := make([][]string, 0, len(cfg.Statuses))
	for _, s := range cfg.Statuses {
		var flags []string
		if s.IsDefault {
			flags = append(flags, "default")
		}
		if s.IsFinal {
			flags = append(flags, "final")
		}
		statusRows = append(statusRows, []string{s.Name, StatusPill(s), strings.Join(flags, ",")})
	}

	typeRows := make([][]string, 0, len(cfg.IssueTypes))
	for _, t := range cfg.IssueTypes {
		wf := Dim("(default workflow)")
		if len(t.Workflow) > 0 {
			wf = strings.Join(t.Workflow, " → ")
		}
		active := StyleGreen.Render("active")
		if !t.IsActive {
			active = Dim("inactive")
		}
		typeRows = append(typeRows, []string{TypeBadge(t.Name), active, wf})
	}

	return Header("Statuses") + "\n" + RenderTable([]string{"NAME", "LABEL", "FLAGS"}, statusRows) +
		"\n\n" + Header("Issue types") + "\n" + RenderTable([]string{"TYPE", "STATE", "WORKFLOW"}, typeRows)
}
