package usecase

import (
	"context"

	"pinpoint.dev/pinpoint/internal/domain"
	apperrors "pinpoint.dev/pinpoint/internal/pkg/errors"
	"pinpoint.dev/pinpoint/internal/store"
)

// InboxService is the read/update side of the in-app notification inbox,
// plus watcher and preference management. These operations are single
// statements and need no explicit transaction.
type InboxService struct {
	queries *store.Queries
}

func NewInboxService(queries *store.Queries) *InboxService {
	return &InboxService{queries: queries}
}

// InboxPage is one page of a user's notifications with the total unread
// count for badge rendering.
type InboxPage struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int                   `json:"total"`
	UnreadCount   int                   `json:"unread_count"`
}

func (s *InboxService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (InboxPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	notifications, err := s.queries.ListNotifications(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return InboxPage{}, err
	}
	total, err := s.queries.CountNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return InboxPage{}, err
	}
	unread, err := s.queries.CountNotifications(ctx, userID, true)
	if err != nil {
		return InboxPage{}, err
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}
	return InboxPage{Notifications: notifications, Total: total, UnreadCount: unread}, nil
}

func (s *InboxService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.queries.CountNotifications(ctx, userID, true)
}

// MarkRead marks one of the user's notifications read. Re-marking an
// already-read notification succeeds; marking someone else's notification
// is indistinguishable from a missing one.
func (s *InboxService) MarkRead(ctx context.Context, userID, notificationID string) error {
	affected, err := s.queries.MarkNotificationRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		exists, err := s.queries.NotificationExists(ctx, notificationID, userID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NotFound(apperrors.CodeNotificationNotFound, "notification not found")
		}
	}
	return nil
}

func (s *InboxService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.queries.MarkAllNotificationsRead(ctx, userID)
}

// GetPreferences returns the user's preference row, or the defaults when
// none is persisted.
func (s *InboxService) GetPreferences(ctx context.Context, userID string) (domain.Preference, error) {
	return s.queries.GetPreference(ctx, userID)
}

func (s *InboxService) SavePreferences(ctx context.Context, p domain.Preference) error {
	if err := s.queries.UpsertPreference(ctx, p); err != nil {
		return apperrors.Wrap(err, apperrors.CodePreferenceSaveFailed, "could not save preferences", 500)
	}
	return nil
}

// WatchIssue subscribes a user to an issue's events.
func (s *InboxService) WatchIssue(ctx context.Context, orgID, issueID, userID string) error {
	issue, err := s.queries.GetIssueRef(ctx, issueID)
	if err := lookupErr(err, issue.OrgID == orgID, apperrors.ErrIssueNotFoundf(issueID)); err != nil {
		return err
	}
	return s.queries.InsertIssueWatchers(ctx, issueID, []string{userID})
}

func (s *InboxService) UnwatchIssue(ctx context.Context, issueID, userID string) error {
	return s.queries.DeleteIssueWatcher(ctx, issueID, userID)
}

// WatchMachine subscribes a user to a machine's new issues with a watch
// mode; subscribe mode additionally auto-subscribes them to each new issue.
func (s *InboxService) WatchMachine(ctx context.Context, orgID, machineID, userID string, mode domain.WatchMode) error {
	machine, err := s.queries.GetMachineRef(ctx, machineID)
	if err := lookupErr(err, machine.OrgID == orgID, apperrors.ErrMachineNotFoundf(machineID)); err != nil {
		return err
	}
	return s.queries.UpsertMachineWatcher(ctx, domain.MachineWatcher{
		MachineID: machineID,
		UserID:    userID,
		Mode:      mode,
	})
}

func (s *InboxService) UnwatchMachine(ctx context.Context, machineID, userID string) error {
	return s.queries.DeleteMachineWatcher(ctx, machineID, userID)
}
