package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/charmbracelet/lipgloss"
)

// DefaultColumnWidth is the inner width of one board column.
const DefaultColumnWidth = 24

// ColumnState controls how a board column is drawn.
type ColumnState int

const (
	ColumnNormal ColumnState = iota
	ColumnFocused
	// ColumnBlocked marks a column the selected card may not be dropped on.
	ColumnBlocked
)

// RenderColumn draws one status column. selected is the index of the
// highlighted card, or -1.
func RenderColumn(col contract.BoardColumn, width int, state ColumnState, selected int) string {
	border := ColorDim
	switch state {
	case ColumnFocused:
		border = ColorHeader
	case ColumnBlocked:
		border = ColorRed
	}
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width).
		Padding(0, 1)

	label := col.Status.DisplayName
	if label == "" {
		label = col.Status.Name
	}
	title := StatusStyle(col.Status).Bold(true).Render(Truncate(label, width-6)) +
		StyleDim.Render(fmt.Sprintf(" (%d)", len(col.Cards)))

	lines := []string{title, StyleDim.Render(strings.Repeat("─", width-2))}
	if len(col.Cards) == 0 {
		lines = append(lines, Dim("—"))
	}
	for i, card := range col.Cards {
		lines = append(lines, RenderCard(card, width-2, i == selected))
	}
	body := strings.Join(lines, "\n")
	if state == ColumnBlocked {
		body = StyleDim.Render(body)
	}
	return style.Render(body)
}

// RenderCard draws a single card line.
func RenderCard(card contract.BoardCard, width int, selected bool) string {
	key := card.Issue.DisplayKey()
	text := Truncate(key+" "+card.Issue.Title, width)
	if selected {
		return lipgloss.NewStyle().Foreground(ColorFg).Background(ColorHeader).Bold(true).Render(text)
	}
	return StyleDim.Render(key) + StyleFg.Render(strings.TrimPrefix(text, key))
}

// FormatBoard renders the whole board statically, columns side by side.
func FormatBoard(view *contract.BoardView, width int) string {
	if width <= 0 {
		width = DefaultColumnWidth
	}
	cols := make([]string, 0, len(view.Columns))
	for _, c := range view.Columns {
		cols = append(cols, RenderColumn(c, width, ColumnNormal, -1))
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	return out + FormatUnplaced(view.Unplaced)
}

// FormatUnplaced lists cards whose status has no column, or "" when none.
func FormatUnplaced(cards []contract.BoardCard) string {
	if len(cards) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n" + Header("Unplaced"))
	for _, c := range cards {
		fmt.Fprintf(&b, "\n%s %s %s", StyleDim.Render(c.Issue.DisplayKey()), c.Issue.Title,
			StyleRed.Render("("+c.Issue.Status+")"))
	}
	return b.String()
}
