package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS organizations (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	subdomain  TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	name          TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS memberships (
	org_id     TEXT NOT NULL REFERENCES organizations(id),
	user_id    TEXT NOT NULL REFERENCES users(id),
	role       TEXT NOT NULL DEFAULT 'member',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (org_id, user_id)
);

CREATE TABLE IF NOT EXISTS locations (
	id         TEXT PRIMARY KEY,
	org_id     TEXT NOT NULL REFERENCES organizations(id),
	name       TEXT NOT NULL,
	address    TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS machines (
	id          TEXT PRIMARY KEY,
	org_id      TEXT NOT NULL REFERENCES organizations(id),
	location_id TEXT NOT NULL REFERENCES locations(id),
	name        TEXT NOT NULL,
	owner_id    TEXT REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS issues (
	id          TEXT PRIMARY KEY,
	org_id      TEXT NOT NULL REFERENCES organizations(id),
	machine_id  TEXT NOT NULL REFERENCES machines(id),
	number      INTEGER NOT NULL,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'new',
	assignee_id TEXT REFERENCES users(id),
	created_by  TEXT REFERENCES users(id),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (org_id, number)
);

CREATE TABLE IF NOT EXISTS comments (
	id         TEXT PRIMARY KEY,
	issue_id   TEXT NOT NULL REFERENCES issues(id),
	author_id  TEXT REFERENCES users(id),
	content    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS issue_watchers (
	issue_id TEXT NOT NULL REFERENCES issues(id),
	user_id  TEXT NOT NULL REFERENCES users(id),
	PRIMARY KEY (issue_id, user_id)
);

CREATE TABLE IF NOT EXISTS machine_watchers (
	machine_id TEXT NOT NULL REFERENCES machines(id),
	user_id    TEXT NOT NULL REFERENCES users(id),
	watch_mode TEXT NOT NULL DEFAULT 'watch',
	PRIMARY KEY (machine_id, user_id)
);

CREATE TABLE IF NOT EXISTS notification_preferences (
	user_id                        TEXT PRIMARY KEY REFERENCES users(id),
	email_enabled                  BOOLEAN NOT NULL DEFAULT TRUE,
	in_app_enabled                 BOOLEAN NOT NULL DEFAULT TRUE,
	email_on_assigned              BOOLEAN NOT NULL DEFAULT TRUE,
	in_app_on_assigned             BOOLEAN NOT NULL DEFAULT TRUE,
	email_on_status_change         BOOLEAN NOT NULL DEFAULT TRUE,
	in_app_on_status_change        BOOLEAN NOT NULL DEFAULT TRUE,
	email_on_new_comment           BOOLEAN NOT NULL DEFAULT TRUE,
	in_app_on_new_comment          BOOLEAN NOT NULL DEFAULT TRUE,
	email_on_new_issue             BOOLEAN NOT NULL DEFAULT TRUE,
	in_app_on_new_issue            BOOLEAN NOT NULL DEFAULT TRUE,
	email_on_ownership_change      BOOLEAN NOT NULL DEFAULT TRUE,
	in_app_on_ownership_change     BOOLEAN NOT NULL DEFAULT TRUE,
	email_watch_new_issues_global  BOOLEAN NOT NULL DEFAULT FALSE,
	in_app_watch_new_issues_global BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL REFERENCES users(id),
	type          TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	read          BOOLEAN NOT NULL DEFAULT FALSE,
	read_at       TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_issues_machine ON issues(machine_id);
CREATE INDEX IF NOT EXISTS idx_issues_org_status ON issues(org_id, status);
CREATE INDEX IF NOT EXISTS idx_comments_issue ON comments(issue_id);
CREATE INDEX IF NOT EXISTS idx_notifications_user_read ON notifications(user_id, read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// Migrate applies any schema migrations newer than the current version.
// Intended for development and tests; production uses managed migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_version: %w", err)
	}

	var current int
	if err := pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
	}
	return nil
}
