// Package domain holds PinPoint's core entities and notification event
// types shared by the store, use cases, and the notification engine.
package domain

import "time"

// Role is a user's role within an organization.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleMember     Role = "member"
)

// User is a registered account. Users may belong to several organizations.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Organization is the tenant boundary. Every machine, location, and issue
// belongs to exactly one organization.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	CreatedAt time.Time `json:"created_at"`
}

// Membership links a user to an organization with a role.
type Membership struct {
	OrgID     string    `json:"org_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Location is a physical venue hosting machines.
type Location struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Machine is a pinball machine registered at a location.
type Machine struct {
	ID         string    `json:"id"`
	OrgID      string    `json:"org_id"`
	LocationID string    `json:"location_id"`
	Name       string    `json:"name"`
	// OwnerID is the member responsible for the machine; empty when the
	// machine is collectively owned.
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueStatus is the triage state of an issue.
type IssueStatus string

const (
	IssueStatusNew        IssueStatus = "new"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// statusTransitions enumerates legal issue status moves.
var statusTransitions = map[IssueStatus][]IssueStatus{
	IssueStatusNew:        {IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed},
	IssueStatusInProgress: {IssueStatusNew, IssueStatusResolved, IssueStatusClosed},
	IssueStatusResolved:   {IssueStatusClosed, IssueStatusInProgress},
	IssueStatusClosed:     {IssueStatusInProgress},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to IssueStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Issue is a reported problem against a machine.
type Issue struct {
	ID          string      `json:"id"`
	OrgID       string      `json:"org_id"`
	MachineID   string      `json:"machine_id"`
	// Number is org-scoped and sequential; rendered as "#<number>".
	Number      int         `json:"number"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Status      IssueStatus `json:"status"`
	// AssigneeID and CreatedBy are empty for unassigned/anonymous issues.
	AssigneeID string    `json:"assignee_id,omitempty"`
	CreatedBy  string    `json:"created_by,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FormattedNumber returns the display form of the issue number.
func (i Issue) FormattedNumber() string {
	return FormatIssueNumber(i.Number)
}

// Comment is a remark on an issue.
type Comment struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	AuthorID  string    `json:"author_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// WatchMode controls what a machine watcher receives.
type WatchMode string

const (
	// WatchModeWatch: notified of new issues on the machine only.
	WatchModeWatch WatchMode = "watch"
	// WatchModeSubscribe: notified of new issues AND auto-added as a
	// watcher of each new issue.
	WatchModeSubscribe WatchMode = "subscribe"
)

// IssueWatcher subscribes a user to a specific issue.
type IssueWatcher struct {
	IssueID string `json:"issue_id"`
	UserID  string `json:"user_id"`
}

// MachineWatcher subscribes a user to a machine with a watch mode.
type MachineWatcher struct {
	MachineID string    `json:"machine_id"`
	UserID    string    `json:"user_id"`
	Mode      WatchMode `json:"mode"`
}

// Notification is a persisted in-app inbox entry. Display text is derived
// at read time from the referenced resource, not stored.
type Notification struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Type         EventType  `json:"type"`
	ResourceID   string     `json:"resource_id"`
	ResourceType string     `json:"resource_type"`
	Read         bool       `json:"read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
