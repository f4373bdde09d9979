package domain

import "time"

// Link is one stored, directed, typed edge between two issues. A pair of
// issues has at most one link record regardless of direction; the reverse
// perspective is derived with LinkType.Inverse.
type Link struct {
	SourceID  string    `json:"source_id"`
	TargetID  string    `json:"target_id"`
	Type      LinkType  `json:"link_type"`
	CreatedAt time.Time `json:"created_at"`
}

// Involves reports whether the link touches the given issue.
func (l Link) Involves(issueID string) bool {
	return l.SourceID == issueID || l.TargetID == issueID
}

// ViewFrom returns the other end of the link and the link type as seen from
// issueID. For records stored from the other side the inverse type is used.
func (l Link) ViewFrom(issueID string) (otherID string, linkType LinkType, dir LinkDirection) {
	if l.SourceID == issueID {
		return l.TargetID, l.Type, DirectionOutgoing
	}
	return l.SourceID, l.Type.Inverse(), DirectionIncoming
}
