package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pinpoint.dev/pinpoint/internal/domain"
)

const preferenceColumns = `
	user_id, email_enabled, in_app_enabled,
	email_on_assigned, in_app_on_assigned,
	email_on_status_change, in_app_on_status_change,
	email_on_new_comment, in_app_on_new_comment,
	email_on_new_issue, in_app_on_new_issue,
	email_on_ownership_change, in_app_on_ownership_change,
	email_watch_new_issues_global, in_app_watch_new_issues_global`

func scanPreference(row pgx.Row) (domain.Preference, error) {
	var p domain.Preference
	err := row.Scan(
		&p.UserID, &p.EmailEnabled, &p.InAppEnabled,
		&p.EmailOnAssigned, &p.InAppOnAssigned,
		&p.EmailOnStatusChange, &p.InAppOnStatusChange,
		&p.EmailOnNewComment, &p.InAppOnNewComment,
		&p.EmailOnNewIssue, &p.InAppOnNewIssue,
		&p.EmailOnOwnershipChange, &p.InAppOnOwnershipChange,
		&p.EmailWatchNewIssuesGlobal, &p.InAppWatchNewIssuesGlobal,
	)
	return p, err
}

// GetPreference fetches one user's preference row. Returns the fallback
// defaults when no row exists: a missing row is not an error condition.
func (q *Queries) GetPreference(ctx context.Context, userID string) (domain.Preference, error) {
	p, err := scanPreference(q.db.QueryRow(ctx,
		`SELECT `+preferenceColumns+` FROM notification_preferences WHERE user_id = $1`,
		userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultPreferences(userID), nil
		}
		return domain.Preference{}, fmt.Errorf("get preference for %s: %w", userID, err)
	}
	return p, nil
}

// FindPreferencesByUserIDs batch-fetches preference rows for exactly the
// given users in one query. Users without a row are absent from the result;
// callers substitute domain.DefaultPreferences for them.
func (q *Queries) FindPreferencesByUserIDs(ctx context.Context, userIDs []string) ([]domain.Preference, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rows, err := q.db.Query(ctx,
		`SELECT `+preferenceColumns+` FROM notification_preferences WHERE user_id = ANY($1)`,
		userIDs)
	if err != nil {
		return nil, fmt.Errorf("find preferences by user ids: %w", err)
	}
	defer rows.Close()

	var prefs []domain.Preference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

// FindGlobalSubscriberIDs returns the ids of organization members with
// either global new-issue watch flag set.
func (q *Queries) FindGlobalSubscriberIDs(ctx context.Context, orgID string) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT p.user_id
		FROM notification_preferences p
		JOIN memberships m ON m.user_id = p.user_id
		WHERE m.org_id = $1
			AND (p.email_watch_new_issues_global OR p.in_app_watch_new_issues_global)`,
		orgID)
	if err != nil {
		return nil, fmt.Errorf("find global subscribers: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan global subscriber: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// UpsertPreference writes a user's full preference row.
func (q *Queries) UpsertPreference(ctx context.Context, p domain.Preference) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO notification_preferences (`+preferenceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (user_id) DO UPDATE SET
			email_enabled = EXCLUDED.email_enabled,
			in_app_enabled = EXCLUDED.in_app_enabled,
			email_on_assigned = EXCLUDED.email_on_assigned,
			in_app_on_assigned = EXCLUDED.in_app_on_assigned,
			email_on_status_change = EXCLUDED.email_on_status_change,
			in_app_on_status_change = EXCLUDED.in_app_on_status_change,
			email_on_new_comment = EXCLUDED.email_on_new_comment,
			in_app_on_new_comment = EXCLUDED.in_app_on_new_comment,
			email_on_new_issue = EXCLUDED.email_on_new_issue,
			in_app_on_new_issue = EXCLUDED.in_app_on_new_issue,
			email_on_ownership_change = EXCLUDED.email_on_ownership_change,
			in_app_on_ownership_change = EXCLUDED.in_app_on_ownership_change,
			email_watch_new_issues_global = EXCLUDED.email_watch_new_issues_global,
			in_app_watch_new_issues_global = EXCLUDED.in_app_watch_new_issues_global`,
		p.UserID, p.EmailEnabled, p.InAppEnabled,
		p.EmailOnAssigned, p.InAppOnAssigned,
		p.EmailOnStatusChange, p.InAppOnStatusChange,
		p.EmailOnNewComment, p.InAppOnNewComment,
		p.EmailOnNewIssue, p.InAppOnNewIssue,
		p.EmailOnOwnershipChange, p.InAppOnOwnershipChange,
		p.EmailWatchNewIssuesGlobal, p.InAppWatchNewIssuesGlobal,
	)
	if err != nil {
		return fmt.Errorf("upsert preference for %s: %w", p.UserID, err)
	}
	return nil
}
