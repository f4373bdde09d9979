package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/issueflow/internal/contract"
	"github.com/alexanderramin/issueflow/internal/domain"
	"github.com/alexanderramin/issueflow/internal/teatest"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardDriver starts the board for PROJ over the real services.
func boardDriver(t *testing.T, a *App) *teatest.Driver {
	t.Helper()
	m := newBoardModel(context.Background(), serviceBoardSource{a: a}, "PROJ")
	d := teatest.New(t, m, teatest.WithSize(200, 40), teatest.WithCmdTimeout(5*time.Second))
	d.DrainInit()
	return d
}

func boardOf(t *testing.T, d *teatest.Driver) *boardModel {
	t.Helper()
	m, ok := d.Model.(*boardModel)
	require.True(t, ok)
	return m
}

func cardKeys(col *contract.BoardColumn) []string {
	keys := make([]string, len(col.Cards))
	for i, c := range col.Cards {
		keys[i] = c.Issue.Key
	}
	return keys
}

func TestBoardModel_LoadsColumns(t *testing.T) {
	a := testApp(t)
	seedProject(t, a, true)
	seedIssue(t, a, "Crash", domain.TypeBug)

	d := boardDriver(t, a)
	view := stripANSI(d.View())

	assert.Contains(t, view, "Backlog (1)")
	assert.Contains(t, view, "QA (0)")
	assert.Contains(t, view, "PROJ-1")
	assert.Contains(t, view, "quit")
}

func TestBoardModel_DropMovesIssue(t *testing.T) {
	a := testApp(t)
	seedProject(t, a, true)
	seedIssue(t, a, "Crash", domain.TypeBug)

	d := boardDriver(t, a)
	d.PressEnter()
	for range 5 {
		d.PressRight()
	}
	d.PressEnter()

	assert.Equal(t, "qa", mustStatus(t, a, "PROJ-1"))
	m := boardOf(t, d)
	assert.Nil(t, m.holding)
	qa, ok := m.view.Column("qa")
	require.True(t, ok)
	assert.Equal(t, []string{"PROJ-1"}, cardKeys(qa))
	assert.Contains(t, stripANSI(d.View()), "PROJ-1 moved to QA")
}

func TestBoardModel_BlockedColumnRefusesDrop(t *testing.T) {
	a := testApp(t)
	seedProject(t, a, true)
	seedIssue(t, a, "Docs", domain.TypeTask)

	d := boardDriver(t, a)
	d.PressEnter()
	for range 5 {
		d.PressRight()
	}
	d.PressEnter()

	m := boardOf(t, d)
	require.NotNil(t, m.holding, "card stays picked up")
	assert.True(t, m.flashErr)
	assert.Contains(t, stripANSI(d.View()), "PROJ-1 cannot move to QA")
	assert.Equal(t, "backlog", mustStatus(t, a, "PROJ-1"))

	d.PressEsc()
	m = boardOf(t, d)
	assert.Nil(t, m.holding)
	assert.Equal(t, 0, m.col)
}

func TestBoardModel_DropOnOwnColumnCancels(t *testing.T) {
	a := testApp(t)
	seedProject(t, a, false)
	seedIssue(t, a, "Docs", domain.TypeTask)

	d := boardDriver(t, a)
	d.PressEnter()
	d.PressEnter()

	m := boardOf(t, d)
	assert.Nil(t, m.holding)
	assert.Empty(t, m.flash)
	assert.Equal(t, "backlog", mustStatus(t, a, "PROJ-1"))
}

func TestBoardModel_CursorMovesBetweenCards(t *testing.T) {
	a := testApp(t)
	seedProject(t, a, false)
	seedIssue(t, a, "First", domain.TypeTask)
	seedIssue(t, a, "Second", domain.TypeTask)

	d := boardDriver(t, a)
	d.PressDown()
	d.PressDown()
	assert.Equal(t, 1, boardOf(t, d).row, "clamped to the last card")

	d.PressEnter()
	d.PressRight()
	d.PressRight()
	d.PressEnter()
	assert.Equal(t, "development", mustStatus(t, a, "PROJ-2"))
	assert.Equal(t, "backlog", mustStatus(t, a, "PROJ-1"))
}

// rejectingSource serves a fixed board and rejects every transition, as a
// server with a newer workflow would.
type rejectingSource struct {
	view  *contract.BoardView
	calls int
}

func (s *rejectingSource) Board(context.Context, string) (*contract.BoardView, error) {
	return s.view, nil
}

func (s *rejectingSource) Transition(_ context.Context, _ string, status string) (*domain.Issue, error) {
	s.calls++
	return nil, domain.NewTransitionError("bug", status, []string{"backlog", "qa"})
}

func staleBoard() *contract.BoardView {
	return &contract.BoardView{
		ProjectID: "p1",
		Columns: []contract.BoardColumn{
			{Status: domain.Status{Name: "backlog", DisplayName: "Backlog"}, Cards: []contract.BoardCard{
				{Issue: &domain.Issue{ID: "i1", Key: "PROJ-1", Title: "Crash", Type: "bug", Status: "backlog"},
					ValidDropTargets: []string{"backlog", "development"}},
				{Issue: &domain.Issue{ID: "i2", Key: "PROJ-2", Title: "Leak", Type: "bug", Status: "backlog"},
					ValidDropTargets: []string{"backlog", "development"}},
			}},
			{Status: domain.Status{Name: "development", DisplayName: "Development"}, Cards: []contract.BoardCard{}},
		},
		Unplaced: []contract.BoardCard{},
	}
}

func TestBoardModel_RejectedMoveReverts(t *testing.T) {
	src := &rejectingSource{view: staleBoard()}
	d := teatest.New(t, newBoardModel(context.Background(), src, "PROJ"), teatest.WithSize(120, 30))
	d.DrainInit()

	d.PressEnter()
	d.PressRight()
	d.PressEnter()

	assert.Equal(t, 1, src.calls)
	m := boardOf(t, d)
	backlog, _ := m.view.Column("backlog")
	dev, _ := m.view.Column("development")
	assert.Equal(t, []string{"PROJ-1", "PROJ-2"}, cardKeys(backlog), "card back in its original slot")
	assert.Empty(t, dev.Cards)
	assert.Equal(t, "backlog", backlog.Cards[0].Issue.Status)
	assert.True(t, m.flashErr)
	assert.Contains(t, stripANSI(d.View()), "PROJ-1: bug cannot transition to development; valid statuses: backlog, qa")

	assert.Equal(t, "backlog", src.view.Columns[0].Cards[0].Issue.Status, "source view untouched")
}

func TestBoardModel_DropIsOptimistic(t *testing.T) {
	src := &rejectingSource{view: staleBoard()}
	m := newBoardModel(context.Background(), src, "PROJ")
	m.Update(boardLoadedMsg{view: src.view})

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	dev, _ := m.view.Column("development")
	assert.Equal(t, []string{"PROJ-1"}, cardKeys(dev), "moved before the service answers")
	assert.Equal(t, 0, src.calls)

	msg := cmd()
	res, ok := msg.(moveResultMsg)
	require.True(t, ok)
	require.Error(t, res.err)
	assert.Equal(t, 1, src.calls)
}

func TestBoardModel_LoadError(t *testing.T) {
	a := testApp(t)
	m := newBoardModel(context.Background(), serviceBoardSource{a: a}, "NOPE")
	d := teatest.New(t, m, teatest.WithCmdTimeout(5*time.Second))
	d.DrainInit()

	assert.Contains(t, stripANSI(d.View()), "Error:")
	assert.ErrorIs(t, boardOf(t, d).err, domain.ErrNotFound)
}

func TestBoardModel_Quit(t *testing.T) {
	src := &rejectingSource{view: staleBoard()}
	d := teatest.New(t, newBoardModel(context.Background(), src, "PROJ"))
	d.DrainInit()

	d.PressKey('q')
	assert.True(t, d.Quitting)
}
