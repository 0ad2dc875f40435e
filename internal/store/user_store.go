package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pinpoint.dev/pinpoint/internal/domain"
)

// ErrNoRows is returned when a single-row lookup finds nothing.
var ErrNoRows = pgx.ErrNoRows

// CreateUser inserts a new user. Generates a UUID if ID is empty.
func (q *Queries) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	if strings.TrimSpace(u.Email) == "" {
		return domain.User{}, fmt.Errorf("user email must not be empty")
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := q.db.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByID fetches one user.
func (q *Queries) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail fetches one user by email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var u domain.User
	err := q.db.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// FindEmailsByUserIDs batch-fetches contact addresses for a set of users.
// One query for all ids; users without a row are simply absent from the map.
func (q *Queries) FindEmailsByUserIDs(ctx context.Context, userIDs []string) (map[string]string, error) {
	if len(userIDs) == 0 {
		return map[string]string{}, nil
	}

	rows, err := q.db.Query(ctx,
		`SELECT id, email FROM users WHERE id = ANY($1)`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("find emails by user ids: %w", err)
	}
	defer rows.Close()

	emails := make(map[string]string, len(userIDs))
	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return nil, fmt.Errorf("scan user email: %w", err)
		}
		emails[id] = email
	}
	return emails, rows.Err()
}

// CreateOrganization inserts a new organization.
func (q *Queries) CreateOrganization(ctx context.Context, org domain.Organization) (domain.Organization, error) {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	org.CreatedAt = time.Now().UTC()

	_, err := q.db.Exec(ctx, `
		INSERT INTO organizations (id, name, subdomain, created_at)
		VALUES ($1, $2, $3, $4)`,
		org.ID, org.Name, org.Subdomain, org.CreatedAt,
	)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("create organization: %w", err)
	}
	return org, nil
}

// GetOrganization fetches one organization.
func (q *Queries) GetOrganization(ctx context.Context, id string) (domain.Organization, error) {
	var org domain.Organization
	err := q.db.QueryRow(ctx, `
		SELECT id, name, subdomain, created_at
		FROM organizations WHERE id = $1`, id,
	).Scan(&org.ID, &org.Name, &org.Subdomain, &org.CreatedAt)
	if err != nil {
		return domain.Organization{}, fmt.Errorf("get organization %s: %w", id, err)
	}
	return org, nil
}

// UpsertMembership adds a user to an organization or updates their role.
func (q *Queries) UpsertMembership(ctx context.Context, m domain.Membership) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO memberships (org_id, user_id, role, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (org_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
		m.OrgID, m.UserID, m.Role,
	)
	if err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

// GetMembership fetches a user's membership in an organization.
func (q *Queries) GetMembership(ctx context.Context, orgID, userID string) (domain.Membership, error) {
	var m domain.Membership
	err := q.db.QueryRow(ctx, `
		SELECT org_id, user_id, role, created_at
		FROM memberships WHERE org_id = $1 AND user_id = $2`,
		orgID, userID,
	).Scan(&m.OrgID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Membership{}, fmt.Errorf("membership %s/%s: %w", orgID, userID, ErrNoRows)
		}
		return domain.Membership{}, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}
