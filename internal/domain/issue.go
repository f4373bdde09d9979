package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// IssueRef is the canonical reference to another issue. Payloads may carry
// either a bare id string or an object with an "id" field; both decode to
// the same value so internal code only ever sees IssueRef.ID.
type IssueRef struct {
	ID string `json:"id"`
}

// Ref returns a reference to the issue with the given id.
func Ref(id string) *IssueRef {
	if id == "" {
		return nil
	}
	return &IssueRef{ID: id}
}

// UnmarshalJSON accepts "id", {"id": "..."} and null.
func (r *IssueRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.ID = ""
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	var obj struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decoding issue reference: %w", err)
	}
	r.ID = CoalesceStr(obj.ID, obj.Key)
	return nil
}

// Issue is a unit of trackable work. Parent is written only by the
// relationship service; children and links are derived views.
type Issue struct {
	ID          string    `json:"id"`
	Key         string    `json:"key"`
	ProjectID   string    `json:"project_id"`
	Seq         int       `json:"seq"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Parent      *IssueRef `json:"parent,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ParentID returns the parent's id, or "" when the issue has no parent.
func (i *Issue) ParentID() string {
	if i.Parent == nil {
		return ""
	}
	return i.Parent.ID
}

// HasParent reports whether the issue currently has a parent.
func (i *Issue) HasParent() bool {
	return i.ParentID() != ""
}

// CanHaveChildren reports whether the issue type may hold children.
// Subtasks are leaves.
func (i *Issue) CanHaveChildren() bool {
	return i.Type != TypeSubtask
}

// SetParent points the issue at parentID and stamps UpdatedAt.
func (i *Issue) SetParent(parentID string, now time.Time) error {
	if parentID == i.ID {
		return RelationshipError("issue %s cannot be its own parent", i.DisplayKey())
	}
	i.Parent = Ref(parentID)
	i.UpdatedAt = now
	return nil
}

// ClearParent detaches the issue from its parent.
func (i *Issue) ClearParent(now time.Time) {
	i.Parent = nil
	i.UpdatedAt = now
}

// DisplayKey returns the human key when set, else a truncated id.
func (i *Issue) DisplayKey() string {
	if i.Key != "" {
		return i.Key
	}
	if len(i.ID) >= 8 {
		return i.ID[:8]
	}
	return i.ID
}
