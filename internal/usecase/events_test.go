package usecase

import (
	"testing"

	"pinpoint.dev/pinpoint/internal/domain"
)

func TestNewIssueEvent(t *testing.T) {
	issue := domain.Issue{
		ID: "i1", OrgID: "org1", MachineID: "m1",
		Number: 12, Title: "Right ramp stuck",
	}
	event := newIssueEvent(issue, "Attack from Mars", "u1")

	if event.Type != domain.EventNewIssue {
		t.Errorf("type = %s", event.Type)
	}
	if event.ResourceID != "i1" || event.ResourceType != domain.ResourceIssue {
		t.Errorf("resource = %s/%s", event.ResourceType, event.ResourceID)
	}
	if event.ActorID != "u1" || event.IncludeActor {
		t.Error("reporter must be the excluded actor")
	}
	if event.Context.FormattedIssueID != "#12" {
		t.Errorf("formatted id = %q", event.Context.FormattedIssueID)
	}
	if event.Context.MachineName != "Attack from Mars" {
		t.Errorf("machine name = %q", event.Context.MachineName)
	}
	if err := event.Validate(); err != nil {
		t.Errorf("event must validate: %v", err)
	}
}

func TestNewIssueEvent_AnonymousReporter(t *testing.T) {
	event := newIssueEvent(domain.Issue{ID: "i1", Number: 1, Title: "t"}, "m", "")
	if event.ActorID != "" {
		t.Errorf("anonymous report must carry no actor, got %q", event.ActorID)
	}
}

func TestIssueAssignedEvent(t *testing.T) {
	event := issueAssignedEvent("i1", "assignee", "actor")
	if len(event.AdditionalRecipientIDs) != 1 || event.AdditionalRecipientIDs[0] != "assignee" {
		t.Errorf("assignee must be force-included, got %v", event.AdditionalRecipientIDs)
	}
	if event.IncludeActor {
		t.Error("actor must be excluded")
	}
	if err := event.Validate(); err != nil {
		t.Errorf("event must validate: %v", err)
	}
}

func TestStatusChangedEvent(t *testing.T) {
	event := statusChangedEvent("i1", "u1", domain.IssueStatusResolved)
	if event.Context.NewStatus != "resolved" {
		t.Errorf("new status = %q", event.Context.NewStatus)
	}
	if err := event.Validate(); err != nil {
		t.Errorf("event must validate: %v", err)
	}
}

func TestNewCommentEvent(t *testing.T) {
	event := newCommentEvent("i1", "u1", "looks fixed to me")
	if event.Context.CommentText != "looks fixed to me" {
		t.Errorf("comment text = %q", event.Context.CommentText)
	}
	if event.ActorID != "u1" || event.IncludeActor {
		t.Error("author must be the excluded actor")
	}
}

func TestOwnershipChangedEvent(t *testing.T) {
	event := ownershipChangedEvent("i1", "newOwner", "admin", "Twilight Zone")
	if event.ResourceType != domain.ResourceIssue {
		t.Errorf("ownership events are issue-scoped, got %s", event.ResourceType)
	}
	if len(event.AdditionalRecipientIDs) != 1 || event.AdditionalRecipientIDs[0] != "newOwner" {
		t.Errorf("new owner must be force-included, got %v", event.AdditionalRecipientIDs)
	}
	if err := event.Validate(); err != nil {
		t.Errorf("event must validate: %v", err)
	}
}
