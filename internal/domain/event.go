package domain

import "fmt"

// EventType identifies a notification-worthy state change.
type EventType string

const (
	EventIssueAssigned           EventType = "issue_assigned"
	EventIssueStatusChanged      EventType = "issue_status_changed"
	EventNewComment              EventType = "new_comment"
	EventNewIssue                EventType = "new_issue"
	EventMachineOwnershipChanged EventType = "machine_ownership_changed"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventIssueAssigned, EventIssueStatusChanged, EventNewComment,
		EventNewIssue, EventMachineOwnershipChanged:
		return true
	}
	return false
}

// Resource types an event can target.
const (
	ResourceIssue   = "issue"
	ResourceMachine = "machine"
)

// EventContext carries denormalized display data for email rendering so
// the engine does not re-query it. Caller-supplied values win over
// engine-resolved ones.
type EventContext struct {
	IssueTitle       string
	MachineName      string
	FormattedIssueID string
	CommentText      string
	NewStatus        string
}

// Event describes one triggering state change. It is constructed by the
// calling use case and never persisted.
type Event struct {
	Type         EventType
	ResourceID   string
	ResourceType string // ResourceIssue or ResourceMachine

	// ActorID is the user who caused the event; empty for anonymous
	// actions (e.g. a guest reporting an issue).
	ActorID string

	// IncludeActor forces the actor into the recipient set when true and
	// forces them out when false, regardless of subscriptions.
	IncludeActor bool

	// AdditionalRecipientIDs are caller-chosen recipients unioned into
	// the resolved set (e.g. the new assignee on issue_assigned).
	AdditionalRecipientIDs []string

	Context EventContext
}

// Validate checks the event is well-formed before resolution starts.
func (e Event) Validate() error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown event type: %s", e.Type)
	}
	if e.ResourceID == "" {
		return fmt.Errorf("event resource id is required")
	}
	if e.ResourceType != ResourceIssue && e.ResourceType != ResourceMachine {
		return fmt.Errorf("unknown resource type: %s", e.ResourceType)
	}
	if e.Type != EventNewIssue && e.ResourceType != ResourceIssue {
		return fmt.Errorf("event type %s is issue-scoped, got resource type %s", e.Type, e.ResourceType)
	}
	return nil
}

// FormatIssueNumber renders an org-scoped issue number for display.
func FormatIssueNumber(n int) string {
	return fmt.Sprintf("#%d", n)
}
