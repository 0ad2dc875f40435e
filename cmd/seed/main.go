// Package main provides demo data seeding for PinPoint.
//
// Seeds an organization with a few members, a location, machines, and
// watcher/preference rows so a fresh install has something to look at.
// Idempotent: re-running updates rather than duplicates.
package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"pinpoint.dev/pinpoint/internal/config"
	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/infrastructure"
	"pinpoint.dev/pinpoint/internal/pkg/logger"
	"pinpoint.dev/pinpoint/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	logger.Info("Starting data seeding...")
	if err := seedDemoOrg(ctx, db.Queries); err != nil {
		return fmt.Errorf("seed demo org: %w", err)
	}
	logger.Info("Data seeding completed successfully")
	return nil
}

type seedUser struct {
	email string
	name  string
	role  domain.Role
}

func seedDemoOrg(ctx context.Context, queries *store.Queries) error {
	users := []seedUser{
		{"admin@pinpoint.dev", "Avery Admin", domain.RoleAdmin},
		{"tech@pinpoint.dev", "Toni Technician", domain.RoleTechnician},
		{"member@pinpoint.dev", "Morgan Member", domain.RoleMember},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("pinpoint-demo"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	var userIDs []string
	for _, u := range users {
		existing, err := queries.GetUserByEmail(ctx, u.email)
		if err == nil {
			userIDs = append(userIDs, existing.ID)
			continue
		}
		created, err := queries.CreateUser(ctx, domain.User{
			Email:        u.email,
			Name:         u.name,
			PasswordHash: string(hash),
		})
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.email, err)
		}
		userIDs = append(userIDs, created.ID)
	}

	org, err := queries.CreateOrganization(ctx, domain.Organization{
		Name:      "Demo Pinball Collective",
		Subdomain: "demo",
	})
	if err != nil {
		// Already seeded; nothing else is safe to re-create blindly.
		logger.Info("Demo organization already present, skipping")
		return nil
	}

	for i, u := range users {
		err := queries.UpsertMembership(ctx, domain.Membership{
			OrgID:  org.ID,
			UserID: userIDs[i],
			Role:   u.role,
		})
		if err != nil {
			return fmt.Errorf("membership for %s: %w", u.email, err)
		}
	}

	loc, err := queries.CreateLocation(ctx, domain.Location{
		OrgID:   org.ID,
		Name:    "Main Hall",
		Address: "1 Flipper Way",
	})
	if err != nil {
		return fmt.Errorf("create location: %w", err)
	}

	machines := []string{"Medieval Madness", "Attack from Mars", "Twilight Zone"}
	for i, name := range machines {
		m := domain.Machine{OrgID: org.ID, LocationID: loc.ID, Name: name}
		if i == 0 {
			m.OwnerID = userIDs[1] // the technician owns one machine
		}
		created, err := queries.CreateMachine(ctx, m)
		if err != nil {
			return fmt.Errorf("create machine %s: %w", name, err)
		}
		if i == 0 {
			err := queries.UpsertMachineWatcher(ctx, domain.MachineWatcher{
				MachineID: created.ID,
				UserID:    userIDs[1],
				Mode:      domain.WatchModeSubscribe,
			})
			if err != nil {
				return fmt.Errorf("watch machine %s: %w", name, err)
			}
		}
	}

	// The admin watches all new issues in the org.
	adminPrefs := domain.DefaultPreferences(userIDs[0])
	adminPrefs.InAppWatchNewIssuesGlobal = true
	adminPrefs.EmailWatchNewIssuesGlobal = true
	if err := queries.UpsertPreference(ctx, adminPrefs); err != nil {
		return fmt.Errorf("save admin preferences: %w", err)
	}

	logger.Info("Seeded demo organization with 3 users, 1 location, 3 machines")
	return nil
}
