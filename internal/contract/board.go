package contract

import "github.com/alexanderramin/issueflow/internal/domain"

// BoardCard is an issue on the board with the columns it may be dropped on.
type BoardCard struct {
	Issue            *domain.Issue `json:"issue"`
	ValidDropTargets []string      `json:"valid_drop_targets"`
}

// BoardColumn is one status column.
type BoardColumn struct {
	Status domain.Status `json:"status"`
	Cards  []BoardCard   `json:"issues"`
}

// BoardView is the serialisable board for a project.
type BoardView struct {
	ProjectID string        `json:"project_id"`
	Columns   []BoardColumn `json:"columns"`
	Unplaced  []BoardCard   `json:"unplaced"`
}

// Column returns the column for status, if present.
func (b *BoardView) Column(status string) (*BoardColumn, bool) {
	for i := range b.Columns {
		if b.Columns[i].Status.Name == status {
			return &b.Columns[i], true
		}
	}
	return nil, false
}

// Find locates the card for issueID and the status column holding it.
// Unplaced cards report an empty column name.
func (b *BoardView) Find(issueID string) (BoardCard, string, bool) {
	for _, col := range b.Columns {
		for _, c := range col.Cards {
			if c.Issue.ID == issueID {
				return c, col.Status.Name, true
			}
		}
	}
	for _, c := range b.Unplaced {
		if c.Issue.ID == issueID {
			return c, "", true
		}
	}
	return BoardCard{}, "", false
}

// CanDrop reports whether status is listed among the card's drop targets.
func (c BoardCard) CanDrop(status string) bool {
	for _, s := range c.ValidDropTargets {
		if s == status {
			return true
		}
	}
	return false
}
