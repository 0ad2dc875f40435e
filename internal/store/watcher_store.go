package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pinpoint.dev/pinpoint/internal/domain"
)

// FindIssueWatchers returns the user ids watching an issue.
func (q *Queries) FindIssueWatchers(ctx context.Context, issueID string) ([]string, error) {
	rows, err := q.db.Query(ctx,
		`SELECT user_id FROM issue_watchers WHERE issue_id = $1`, issueID)
	if err != nil {
		return nil, fmt.Errorf("find issue watchers: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan issue watcher: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// FindMachineWatchers returns all watcher rows for a machine, both modes.
func (q *Queries) FindMachineWatchers(ctx context.Context, machineID string) ([]domain.MachineWatcher, error) {
	rows, err := q.db.Query(ctx,
		`SELECT machine_id, user_id, watch_mode FROM machine_watchers WHERE machine_id = $1`,
		machineID)
	if err != nil {
		return nil, fmt.Errorf("find machine watchers: %w", err)
	}
	defer rows.Close()

	var watchers []domain.MachineWatcher
	for rows.Next() {
		var w domain.MachineWatcher
		if err := rows.Scan(&w.MachineID, &w.UserID, &w.Mode); err != nil {
			return nil, fmt.Errorf("scan machine watcher: %w", err)
		}
		watchers = append(watchers, w)
	}
	return watchers, rows.Err()
}

// InsertIssueWatchers batch-inserts issue watcher rows with conflict-ignore
// semantics: re-running the same insert never duplicates a row. Used both
// by the auto-subscribe side effect and the explicit watch endpoint.
func (q *Queries) InsertIssueWatchers(ctx context.Context, issueID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, userID := range userIDs {
		batch.Queue(`
			INSERT INTO issue_watchers (issue_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (issue_id, user_id) DO NOTHING`,
			issueID, userID)
	}

	results := q.db.SendBatch(ctx, batch)
	defer results.Close()

	for range userIDs {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert issue watcher for issue %s: %w", issueID, err)
		}
	}
	return nil
}

// DeleteIssueWatcher removes a user's watch on an issue.
func (q *Queries) DeleteIssueWatcher(ctx context.Context, issueID, userID string) error {
	_, err := q.db.Exec(ctx,
		`DELETE FROM issue_watchers WHERE issue_id = $1 AND user_id = $2`,
		issueID, userID)
	if err != nil {
		return fmt.Errorf("delete issue watcher: %w", err)
	}
	return nil
}

// UpsertMachineWatcher adds or updates a user's watch on a machine.
func (q *Queries) UpsertMachineWatcher(ctx context.Context, w domain.MachineWatcher) error {
	if w.Mode != domain.WatchModeWatch && w.Mode != domain.WatchModeSubscribe {
		return fmt.Errorf("unknown watch mode: %s", w.Mode)
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO machine_watchers (machine_id, user_id, watch_mode)
		VALUES ($1, $2, $3)
		ON CONFLICT (machine_id, user_id) DO UPDATE SET watch_mode = EXCLUDED.watch_mode`,
		w.MachineID, w.UserID, w.Mode)
	if err != nil {
		return fmt.Errorf("upsert machine watcher: %w", err)
	}
	return nil
}

// DeleteMachineWatcher removes a user's watch on a machine.
func (q *Queries) DeleteMachineWatcher(ctx context.Context, machineID, userID string) error {
	_, err := q.db.Exec(ctx,
		`DELETE FROM machine_watchers WHERE machine_id = $1 AND user_id = $2`,
		machineID, userID)
	if err != nil {
		return fmt.Errorf("delete machine watcher: %w", err)
	}
	return nil
}
