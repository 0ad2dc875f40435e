package notification

import "pinpoint.dev/pinpoint/internal/domain"

// gateResult is the per-recipient, per-channel authorization decision.
type gateResult struct {
	userID string
	email  bool
	inApp  bool
}

// gateRecipients evaluates each recipient's preferences against the event
// type. Authorization is two-level on each channel: the channel master
// switch AND the event-specific toggle. new_issue is the one special case:
// its toggle is the OR of the watcher-specific toggle and the global-watch
// flag, so a global subscriber who disabled the per-event toggle is still
// reached on the channel they globally watch.
func gateRecipients(recipients []string, prefs map[string]domain.Preference, t domain.EventType) []gateResult {
	results := make([]gateResult, 0, len(recipients))
	for _, id := range recipients {
		p, ok := prefs[id]
		if !ok {
			p = domain.DefaultPreferences(id)
		}
		email, inApp := eventToggles(p, t)
		results = append(results, gateResult{
			userID: id,
			email:  p.EmailEnabled && email,
			inApp:  p.InAppEnabled && inApp,
		})
	}
	return results
}

// eventToggles selects the (email, in-app) toggle pair for an event type.
func eventToggles(p domain.Preference, t domain.EventType) (email, inApp bool) {
	switch t {
	case domain.EventIssueAssigned:
		return p.EmailOnAssigned, p.InAppOnAssigned
	case domain.EventIssueStatusChanged:
		return p.EmailOnStatusChange, p.InAppOnStatusChange
	case domain.EventNewComment:
		return p.EmailOnNewComment, p.InAppOnNewComment
	case domain.EventNewIssue:
		return p.EmailOnNewIssue || p.EmailWatchNewIssuesGlobal,
			p.InAppOnNewIssue || p.InAppWatchNewIssuesGlobal
	case domain.EventMachineOwnershipChanged:
		return p.EmailOnOwnershipChange, p.InAppOnOwnershipChange
	}
	return false, false
}
