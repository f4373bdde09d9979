package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/issueflow/internal/cli/formatter"
	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// boardSource is what the board view reads and writes.
type boardSource interface {
	Board(ctx context.Context, projectRef string) (*contract.BoardView, error)
	Transition(ctx context.Context, issueRef, status string) (*domain.Issue, error)
}

type serviceBoardSource struct{ a *App }

func (s serviceBoardSource) Board(ctx context.Context, projectRef string) (*contract.BoardView, error) {
	return s.a.Boards.Board(ctx, projectRef)
}

func (s serviceBoardSource) Transition(ctx context.Context, issueRef, status string) (*domain.Issue, error) {
	return s.a.Issues.Transition(ctx, issueRef, status)
}

type boardKeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Up      key.Binding
	Down    key.Binding
	Grab    key.Binding
	Cancel  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultBoardKeys() boardKeyMap {
	return boardKeyMap{
		Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "column")),
		Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "column")),
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "card")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "card")),
		Grab:    key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick up/drop")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Up, k.Grab, k.Cancel, k.Refresh, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type boardLoadedMsg struct {
	view *contract.BoardView
	err  error
}

// moveResultMsg reports the outcome of a transition already applied to the
// local board.
type moveResultMsg struct {
	issueID   string
	from      string
	fromIndex int
	to        string
	err       error
}

// held is a card picked up and not yet dropped.
type held struct {
	card  contract.BoardCard
	from  string
	index int
}

// boardModel is the interactive board. A dropped card moves locally at
// once; the transition runs afterwards and a rejection moves it back.
type boardModel struct {
	ctx     context.Context
	src     boardSource
	project string

	view     *contract.BoardView
	col, row int
	holding  *held
	flash    string
	flashErr bool
	err      error

	width, height int
	keys          boardKeyMap
	help          help.Model
}

func newBoardModel(ctx context.Context, src boardSource, projectRef string) *boardModel {
	return &boardModel{
		ctx:     ctx,
		src:     src,
		project: projectRef,
		keys:    defaultBoardKeys(),
		help:    help.New(),
	}
}

func (m *boardModel) Init() tea.Cmd {
	return m.load()
}

func (m *boardModel) load() tea.Cmd {
	ctx, src, ref := m.ctx, m.src, m.project
	return func() tea.Msg {
		view, err := src.Board(ctx, ref)
		return boardLoadedMsg{view: view, err: err}
	}
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case boardLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.view = cloneBoard(msg.view)
		m.clampCursor()
		return m, nil

	case moveResultMsg:
		return m, m.handleMoveResult(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *boardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.view == nil || len(m.view.Columns) == 0 {
		if key.Matches(msg, m.keys.Refresh) {
			return m.load()
		}
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		if m.col > 0 {
			m.col--
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Right):
		if m.col < len(m.view.Columns)-1 {
			m.col++
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.Up):
		if m.holding == nil && m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.holding == nil && m.row < len(m.view.Columns[m.col].Cards)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Grab):
		if m.holding != nil {
			return m.drop()
		}
		m.grab()
	case key.Matches(msg, m.keys.Cancel):
		if m.holding != nil {
			m.col = m.columnIndex(m.holding.from)
			m.row = m.holding.index
			m.holding = nil
			m.setFlash("", false)
		}
	case key.Matches(msg, m.keys.Refresh):
		if m.holding == nil {
			return m.load()
		}
	}
	return nil
}

func (m *boardModel) grab() {
	col := m.view.Columns[m.col]
	if len(col.Cards) == 0 {
		return
	}
	card := col.Cards[m.row]
	m.holding = &held{card: card, from: col.Status.Name, index: m.row}
	m.setFlash(fmt.Sprintf("Moving %s: choose a column and press enter", card.Issue.DisplayKey()), false)
}

// drop places the held card in the focused column. Columns outside the
// card's drop targets refuse it without calling the service.
func (m *boardModel) drop() tea.Cmd {
	h := m.holding
	target := m.view.Columns[m.col].Status
	if target.Name == h.from {
		m.holding = nil
		m.row = h.index
		m.setFlash("", false)
		return nil
	}
	if !h.card.CanDrop(target.Name) {
		m.setFlash(fmt.Sprintf("%s cannot move to %s", h.card.Issue.DisplayKey(), statusLabel(target)), true)
		return nil
	}

	m.holding = nil
	m.moveCard(h.card.Issue.ID, h.from, target.Name, -1)
	m.row = len(m.view.Columns[m.col].Cards) - 1
	m.setFlash(fmt.Sprintf("Moving %s to %s…", h.card.Issue.DisplayKey(), statusLabel(target)), false)

	ctx, src := m.ctx, m.src
	issueID, from, index, to := h.card.Issue.ID, h.from, h.index, target.Name
	return func() tea.Msg {
		_, err := src.Transition(ctx, issueID, to)
		return moveResultMsg{issueID: issueID, from: from, fromIndex: index, to: to, err: err}
	}
}

func (m *boardModel) handleMoveResult(msg moveResultMsg) tea.Cmd {
	card, _, ok := m.view.Find(msg.issueID)
	if !ok {
		return m.load()
	}
	keyText := card.Issue.DisplayKey()

	if msg.err != nil {
		m.moveCard(msg.issueID, msg.to, msg.from, msg.fromIndex)
		m.col = m.columnIndex(msg.from)
		m.row = msg.fromIndex
		m.clampCursor()
		reason := msg.err.Error()
		var te *domain.TransitionError
		if errors.As(msg.err, &te) {
			reason = te.Reason()
		}
		m.setFlash(fmt.Sprintf("%s: %s", keyText, reason), true)
		return nil
	}

	label := msg.to
	if col, ok := m.view.Column(msg.to); ok {
		label = statusLabel(col.Status)
	}
	m.setFlash(fmt.Sprintf("%s moved to %s", keyText, label), false)
	return m.load()
}

// moveCard moves the card between columns and updates its status. index -1
// appends.
func (m *boardModel) moveCard(issueID, from, to string, index int) {
	src, ok := m.view.Column(from)
	if !ok {
		return
	}
	dst, ok := m.view.Column(to)
	if !ok {
		return
	}
	for i, c := range src.Cards {
		if c.Issue.ID != issueID {
			continue
		}
		src.Cards = append(src.Cards[:i], src.Cards[i+1:]...)
		c.Issue.Status = to
		if index < 0 || index > len(dst.Cards) {
			index = len(dst.Cards)
		}
		dst.Cards = append(dst.Cards, contract.BoardCard{})
		copy(dst.Cards[index+1:], dst.Cards[index:])
		dst.Cards[index] = c
		return
	}
}

func (m *boardModel) columnIndex(status string) int {
	for i, c := range m.view.Columns {
		if c.Status.Name == status {
			return i
		}
	}
	return 0
}

func (m *boardModel) clampCursor() {
	if m.view == nil || len(m.view.Columns) == 0 {
		m.col, m.row = 0, 0
		return
	}
	m.col = min(max(m.col, 0), len(m.view.Columns)-1)
	m.row = min(max(m.row, 0), max(len(m.view.Columns[m.col].Cards)-1, 0))
}

func (m *boardModel) setFlash(text string, isErr bool) {
	m.flash, m.flashErr = text, isErr
}

func (m *boardModel) columnWidth() int {
	if m.width <= 0 || m.view == nil || len(m.view.Columns) == 0 {
		return formatter.DefaultColumnWidth
	}
	w := m.width/len(m.view.Columns) - 4
	return min(max(w, 12), formatter.DefaultColumnWidth)
}

func (m *boardModel) View() string {
	if m.view == nil {
		if m.err != nil {
			return formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n"
		}
		return formatter.Dim("Loading board…") + "\n"
	}

	var b strings.Builder
	b.WriteString(formatter.Header("Board " + m.project))
	b.WriteString("\n")

	width := m.columnWidth()
	cols := make([]string, 0, len(m.view.Columns))
	for i, col := range m.view.Columns {
		state := formatter.ColumnNormal
		selected := -1
		switch {
		case m.holding != nil && col.Status.Name != m.holding.from && !m.holding.card.CanDrop(col.Status.Name):
			state = formatter.ColumnBlocked
		case i == m.col:
			state = formatter.ColumnFocused
		}
		if m.holding != nil {
			if col.Status.Name == m.holding.from {
				selected = m.holding.index
			}
		} else if i == m.col {
			selected = m.row
		}
		cols = append(cols, formatter.RenderColumn(col, width, state, selected))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString(formatter.FormatUnplaced(m.view.Unplaced))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.flash != "" {
		style := formatter.StyleGreen
		if m.flashErr {
			style = formatter.StyleRed
		}
		b.WriteString(style.Render(m.flash) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func statusLabel(s domain.Status) string {
	return domain.CoalesceStr(s.DisplayName, s.Name)
}

// cloneBoard copies the view deeply enough that local moves never touch the
// source's issues.
func cloneBoard(v *contract.BoardView) *contract.BoardView {
	if v == nil {
		return nil
	}
	cloneCards := func(cards []contract.BoardCard) []contract.BoardCard {
		out := make([]contract.BoardCard, len(cards))
		for i, c := range cards {
			issue := *c.Issue
			out[i] = contract.BoardCard{
				Issue:            &issue,
				ValidDropTargets: append([]string(nil), c.ValidDropTargets...),
			}
		}
		return out
	}
	out := &contract.BoardView{
		ProjectID: v.ProjectID,
		Columns:   make([]contract.BoardColumn, len(v.Columns)),
		Unplaced:  cloneCards(v.Unplaced),
	}
	for i, c := range v.Columns {
		out.Columns[i] = contract.BoardColumn{Status: c.Status, Cards: cloneCards(c.Cards)}
	}
	return out
}
