package domain

// Built-in issue type names. Projects may configure additional types; only
// subtask carries engine-level rules.
const (
	TypeTask    = "task"
	TypeBug     = "bug"
	TypeStory   = "story"
	TypeSubtask = "subtask"
	TypeEpic    = "epic"
)

// DefaultIssueTypes is the type vocabulary used when a project has no
// issue-type configuration of its own.
var DefaultIssueTypes = []string{TypeTask, TypeBug, TypeStory, TypeSubtask, TypeEpic}

// LinkType categorizes a non-hierarchical relationship between two issues.
type LinkType string

const (
	LinkRelatesTo      LinkType = "relates_to"
	LinkBlocks         LinkType = "blocks"
	LinkIsBlockedBy    LinkType = "is_blocked_by"
	LinkDuplicates     LinkType = "duplicates"
	LinkIsDuplicatedBy LinkType = "is_duplicated_by"
)

// ValidLinkTypes is the canonical set of accepted link type strings.
var ValidLinkTypes = map[LinkType]bool{
	LinkRelatesTo:      true,
	LinkBlocks:         true,
	LinkIsBlockedBy:    true,
	LinkDuplicates:     true,
	LinkIsDuplicatedBy: true,
}

// IsValid reports whether t is one of the supported link types.
func (t LinkType) IsValid() bool {
	return ValidLinkTypes[t]
}

// Inverse returns the link type as seen from the other end of the edge.
// relates_to is its own inverse. Unknown types are returned unchanged.
func (t LinkType) Inverse() LinkType {
	switch t {
	case LinkBlocks:
		return LinkIsBlockedBy
	case LinkIsBlockedBy:
		return LinkBlocks
	case LinkDuplicates:
		return LinkIsDuplicatedBy
	case LinkIsDuplicatedBy:
		return LinkDuplicates
	default:
		return t
	}
}

// ParentChild selects hierarchy semantics for a link request.
type ParentChild string

const (
	// RelationNone records a plain typed link; hierarchy is untouched.
	RelationNone ParentChild = ""
	// RelationParent makes the target the parent of the issue.
	RelationParent ParentChild = "parent"
	// RelationChild makes the target a child of the issue.
	RelationChild ParentChild = "child"
)

// IsValid reports whether p is one of the accepted values, including none.
func (p ParentChild) IsValid() bool {
	switch p {
	case RelationNone, RelationParent, RelationChild:
		return true
	}
	return false
}

// LinkDirection tells whether a stored link record starts at the issue being
// viewed (outgoing) or ends there (incoming).
type LinkDirection string

const (
	DirectionOutgoing LinkDirection = "outgoing"
	DirectionIncoming LinkDirection = "incoming"
)
