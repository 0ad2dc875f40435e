package notification

import (
	"context"
	"fmt"
	"sort"

	"pinpoint.dev/pinpoint/internal/domain"
)

// resolution is what resource lookup yields: the tenant scope and the
// machine the event concerns.
type resolution struct {
	orgID     string
	machineID string
}

// resolveResource looks up the event's target resource, fills any blank
// display fields on the event context, and returns the resolved scope.
// Caller-supplied context values always win over resolved ones.
func resolveResource(ctx context.Context, s Store, event *domain.Event) (resolution, error) {
	switch event.ResourceType {
	case domain.ResourceIssue:
		ref, err := s.GetIssueRef(ctx, event.ResourceID)
		if err != nil {
			return resolution{}, fmt.Errorf("resolve issue: %w", err)
		}
		if event.Context.IssueTitle == "" {
			event.Context.IssueTitle = ref.Title
		}
		if event.Context.MachineName == "" {
			event.Context.MachineName = ref.MachineName
		}
		if event.Context.FormattedIssueID == "" {
			event.Context.FormattedIssueID = domain.FormatIssueNumber(ref.Number)
		}
		return resolution{orgID: ref.OrgID, machineID: ref.MachineID}, nil

	case domain.ResourceMachine:
		ref, err := s.GetMachineRef(ctx, event.ResourceID)
		if err != nil {
			return resolution{}, fmt.Errorf("resolve machine: %w", err)
		}
		if event.Context.MachineName == "" {
			event.Context.MachineName = ref.Name
		}
		return resolution{orgID: ref.OrgID, machineID: ref.ID}, nil

	default:
		return resolution{}, fmt.Errorf("unknown resource type: %s", event.ResourceType)
	}
}

// sourceRecipients computes the deduplicated candidate set from the
// event-type-specific subscription sources plus the caller's additional
// recipients. For new_issue it also returns the subscribe-mode machine
// watcher ids so the orchestrator can promote them to issue watchers.
func sourceRecipients(ctx context.Context, s Store, res resolution, event domain.Event) (map[string]struct{}, []string, error) {
	candidates := make(map[string]struct{})
	var autoSubscribe []string

	if event.Type == domain.EventNewIssue {
		globals, err := s.FindGlobalSubscriberIDs(ctx, res.orgID)
		if err != nil {
			return nil, nil, fmt.Errorf("find global subscribers: %w", err)
		}
		for _, id := range globals {
			candidates[id] = struct{}{}
		}

		watchers, err := s.FindMachineWatchers(ctx, res.machineID)
		if err != nil {
			return nil, nil, fmt.Errorf("find machine watchers: %w", err)
		}
		for _, w := range watchers {
			candidates[w.UserID] = struct{}{}
			if w.Mode == domain.WatchModeSubscribe {
				autoSubscribe = append(autoSubscribe, w.UserID)
			}
		}
	} else {
		watchers, err := s.FindIssueWatchers(ctx, event.ResourceID)
		if err != nil {
			return nil, nil, fmt.Errorf("find issue watchers: %w", err)
		}
		for _, id := range watchers {
			candidates[id] = struct{}{}
		}
	}

	for _, id := range event.AdditionalRecipientIDs {
		if id != "" {
			candidates[id] = struct{}{}
		}
	}
	return candidates, autoSubscribe, nil
}

// applyActorPolicy forces the actor in or out of the candidate set and
// returns the final recipients sorted for deterministic downstream order.
func applyActorPolicy(candidates map[string]struct{}, event domain.Event) []string {
	if event.ActorID != "" {
		if event.IncludeActor {
			candidates[event.ActorID] = struct{}{}
		} else {
			delete(candidates, event.ActorID)
		}
	}

	recipients := make([]string, 0, len(candidates))
	for id := range candidates {
		recipients = append(recipients, id)
	}
	sort.Strings(recipients)
	return recipients
}
