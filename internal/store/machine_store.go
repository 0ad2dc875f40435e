package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pinpoint.dev/pinpoint/internal/domain"
)

// CreateLocation inserts a new location. Generates a UUID if ID is empty.
func (q *Queries) CreateLocation(ctx context.Context, loc domain.Location) (domain.Location, error) {
	if strings.TrimSpace(loc.Name) == "" {
		return domain.Location{}, fmt.Errorf("location name must not be empty")
	}
	if loc.ID == "" {
		loc.ID = uuid.NewString()
	}
	loc.CreatedAt = time.Now().UTC()

	_, err := q.db.Exec(ctx, `
		INSERT INTO locations (id, org_id, name, address, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		loc.ID, loc.OrgID, loc.Name, loc.Address, loc.CreatedAt,
	)
	if err != nil {
		return domain.Location{}, fmt.Errorf("create location: %w", err)
	}
	return loc, nil
}

// ListLocations returns all locations in an organization.
func (q *Queries) ListLocations(ctx context.Context, orgID string) ([]domain.Location, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, org_id, name, address, created_at
		FROM locations WHERE org_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var locations []domain.Location
	for rows.Next() {
		var loc domain.Location
		if err := rows.Scan(&loc.ID, &loc.OrgID, &loc.Name, &loc.Address, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// CreateMachine inserts a new machine. Generates a UUID if ID is empty.
func (q *Queries) CreateMachine(ctx context.Context, m domain.Machine) (domain.Machine, error) {
	if strings.TrimSpace(m.Name) == "" {
		return domain.Machine{}, fmt.Errorf("machine name must not be empty")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now().UTC()

	_, err := q.db.Exec(ctx, `
		INSERT INTO machines (id, org_id, location_id, name, owner_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.OrgID, m.LocationID, m.Name, nullString(m.OwnerID), m.CreatedAt,
	)
	if err != nil {
		return domain.Machine{}, fmt.Errorf("create machine: %w", err)
	}
	return m, nil
}

// GetMachineByID fetches one machine.
func (q *Queries) GetMachineByID(ctx context.Context, id string) (domain.Machine, error) {
	var m domain.Machine
	var ownerID sql.NullString
	err := q.db.QueryRow(ctx, `
		SELECT id, org_id, location_id, name, owner_id, created_at
		FROM machines WHERE id = $1`, id,
	).Scan(&m.ID, &m.OrgID, &m.LocationID, &m.Name, &ownerID, &m.CreatedAt)
	if err != nil {
		return domain.Machine{}, fmt.Errorf("get machine %s: %w", id, err)
	}
	m.OwnerID = ownerID.String
	return m, nil
}

// ListMachines returns all machines in an organization.
func (q *Queries) ListMachines(ctx context.Context, orgID string) ([]domain.Machine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, org_id, location_id, name, owner_id, created_at
		FROM machines WHERE org_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	defer rows.Close()

	var machines []domain.Machine
	for rows.Next() {
		var m domain.Machine
		var ownerID sql.NullString
		if err := rows.Scan(&m.ID, &m.OrgID, &m.LocationID, &m.Name, &ownerID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan machine: %w", err)
		}
		m.OwnerID = ownerID.String
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

// SetMachineOwner updates a machine's owner. Returns rows affected so the
// caller can detect a missing machine.
func (q *Queries) SetMachineOwner(ctx context.Context, machineID, ownerID string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE machines SET owner_id = $2 WHERE id = $1`,
		machineID, nullString(ownerID))
	if err != nil {
		return 0, fmt.Errorf("set machine %s owner: %w", machineID, err)
	}
	return tag.RowsAffected(), nil
}

// nullString maps "" to SQL NULL for nullable foreign keys.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
