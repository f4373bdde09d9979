package contract

// CreateIssueRequest creates a top-level issue. Type defaults to task and
// Status to the workflow default of that type.
type CreateIssueRequest struct {
	ProjectID   string `json:"project_id"`
	Title       string `json:"title"`
	Type        string `json:"type,omitempty"`
	Status      string `json:"status,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateIssueRequest carries a partial edit. Nil fields are left unchanged.
type UpdateIssueRequest struct {
	IssueID     string  `json:"-"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// IsEmpty reports whether the request changes nothing.
func (r UpdateIssueRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil
}

// StatusOnly reports whether the request is a pure status change.
func (r UpdateIssueRequest) StatusOnly() bool {
	return r.Status != nil && r.Title == nil && r.Description == nil
}
