package domain

// Preference is one user's notification preference row: two per-channel
// master switches crossed with per-event toggles, plus the two global
// new-issue watch flags.
type Preference struct {
	UserID string `json:"user_id"`

	// Master per-channel kill switches.
	EmailEnabled bool `json:"email_enabled"`
	InAppEnabled bool `json:"in_app_enabled"`

	// Per-event toggles.
	EmailOnAssigned        bool `json:"email_on_assigned"`
	InAppOnAssigned        bool `json:"in_app_on_assigned"`
	EmailOnStatusChange    bool `json:"email_on_status_change"`
	InAppOnStatusChange    bool `json:"in_app_on_status_change"`
	EmailOnNewComment      bool `json:"email_on_new_comment"`
	InAppOnNewComment      bool `json:"in_app_on_new_comment"`
	EmailOnNewIssue        bool `json:"email_on_new_issue"`
	InAppOnNewIssue        bool `json:"in_app_on_new_issue"`
	EmailOnOwnershipChange bool `json:"email_on_ownership_change"`
	InAppOnOwnershipChange bool `json:"in_app_on_ownership_change"`

	// Global new-issue subscription: true on either flag makes the user a
	// candidate recipient for every new_issue event in their organization.
	EmailWatchNewIssuesGlobal bool `json:"email_watch_new_issues_global"`
	InAppWatchNewIssuesGlobal bool `json:"in_app_watch_new_issues_global"`
}

// DefaultPreferences returns the fallback preference row applied whenever a
// user has no persisted row. Per-event toggles default to on; the global
// new-issue watch flags default to off. A user whose preference write failed
// is still notified, with these defaults, rather than silently skipped.
func DefaultPreferences(userID string) Preference {
	return Preference{
		UserID:                 userID,
		EmailEnabled:           true,
		InAppEnabled:           true,
		EmailOnAssigned:        true,
		InAppOnAssigned:        true,
		EmailOnStatusChange:    true,
		InAppOnStatusChange:    true,
		EmailOnNewComment:      true,
		InAppOnNewComment:      true,
		EmailOnNewIssue:        true,
		InAppOnNewIssue:        true,
		EmailOnOwnershipChange: true,
		InAppOnOwnershipChange: true,

		EmailWatchNewIssuesGlobal: false,
		InAppWatchNewIssuesGlobal: false,
	}
}

// GlobalSubscriber reports whether either global new-issue watch flag is set.
func (p Preference) GlobalSubscriber() bool {
	return p.EmailWatchNewIssuesGlobal || p.InAppWatchNewIssuesGlobal
}
