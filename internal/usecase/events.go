package usecase

import "pinpoint.dev/pinpoint/internal/domain"

// Event constructors for the notification engine. Kept as pure functions so
// the mapping from mutation to event is testable without a database.
//
// Actors are excluded by default: a user is not told about their own action.

func newIssueEvent(issue domain.Issue, machineName, reporterID string) domain.Event {
	return domain.Event{
		Type:         domain.EventNewIssue,
		ResourceID:   issue.ID,
		ResourceType: domain.ResourceIssue,
		ActorID:      reporterID,
		IncludeActor: false,
		Context: domain.EventContext{
			IssueTitle:       issue.Title,
			MachineName:      machineName,
			FormattedIssueID: issue.FormattedNumber(),
		},
	}
}

func statusChangedEvent(issueID, actorID string, to domain.IssueStatus) domain.Event {
	return domain.Event{
		Type:         domain.EventIssueStatusChanged,
		ResourceID:   issueID,
		ResourceType: domain.ResourceIssue,
		ActorID:      actorID,
		IncludeActor: false,
		Context:      domain.EventContext{NewStatus: string(to)},
	}
}

func newCommentEvent(issueID, authorID, content string) domain.Event {
	return domain.Event{
		Type:         domain.EventNewComment,
		ResourceID:   issueID,
		ResourceType: domain.ResourceIssue,
		ActorID:      authorID,
		IncludeActor: false,
		Context:      domain.EventContext{CommentText: content},
	}
}

// issueAssignedEvent adds the assignee as an explicit recipient: they must
// hear about the assignment even if they never watched the issue.
func issueAssignedEvent(issueID, assigneeID, actorID string) domain.Event {
	return domain.Event{
		Type:                   domain.EventIssueAssigned,
		ResourceID:             issueID,
		ResourceType:           domain.ResourceIssue,
		ActorID:                actorID,
		IncludeActor:           false,
		AdditionalRecipientIDs: []string{assigneeID},
	}
}

// ownershipChangedEvent targets one open issue on the transferred machine;
// the new owner is force-included so they see the issues they inherited.
func ownershipChangedEvent(issueID, newOwnerID, actorID, machineName string) domain.Event {
	return domain.Event{
		Type:                   domain.EventMachineOwnershipChanged,
		ResourceID:             issueID,
		ResourceType:           domain.ResourceIssue,
		ActorID:                actorID,
		IncludeActor:           false,
		AdditionalRecipientIDs: []string{newOwnerID},
		Context:                domain.EventContext{MachineName: machineName},
	}
}
