package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"pinpoint.dev/pinpoint/internal/domain"
	apperrors "pinpoint.dev/pinpoint/internal/pkg/errors"
	"pinpoint.dev/pinpoint/internal/pkg/logger"
	"pinpoint.dev/pinpoint/internal/store"
)

// MachineService implements machine mutations that notify.
type MachineService struct {
	db       *pgxpool.Pool
	queries  *store.Queries
	notifier Notifier
}

func NewMachineService(db *pgxpool.Pool, queries *store.Queries, notifier Notifier) *MachineService {
	return &MachineService{db: db, queries: queries, notifier: notifier}
}

// TransferOwnership reassigns a machine to a new owner and fans out
// machine_ownership_changed per open issue on the machine, so each issue's
// watchers learn who is responsible now. An empty newOwnerID returns the
// machine to collective ownership; no events fire because there is no new
// owner to introduce.
func (s *MachineService) TransferOwnership(ctx context.Context, orgID, machineID, newOwnerID, actorID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	machine, err := qtx.GetMachineRef(ctx, machineID)
	if err := lookupErr(err, machine.OrgID == orgID, apperrors.ErrMachineNotFoundf(machineID)); err != nil {
		return err
	}
	if newOwnerID != "" {
		if _, err := qtx.GetMembership(ctx, orgID, newOwnerID); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return apperrors.BadRequest(apperrors.CodeValidationFailed, "new owner is not a member of this organization")
			}
			return err
		}
	}

	if _, err := qtx.SetMachineOwner(ctx, machineID, newOwnerID); err != nil {
		return err
	}

	if newOwnerID != "" {
		openIssues, err := qtx.ListOpenIssueIDsByMachine(ctx, machineID)
		if err != nil {
			return err
		}
		for _, issueID := range openIssues {
			event := ownershipChangedEvent(issueID, newOwnerID, actorID, machine.Name)
			if err := s.notifier.Notify(ctx, qtx, event); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit ownership transfer: %w", err)
	}
	logger.Info("Machine ownership transferred",
		zap.String("machine_id", machineID),
		zap.String("new_owner_id", newOwnerID),
	)
	return nil
}

// CreateMachine registers a machine at a location.
func (s *MachineService) CreateMachine(ctx context.Context, m domain.Machine) (domain.Machine, error) {
	if m.OwnerID != "" {
		if _, err := s.queries.GetMembership(ctx, m.OrgID, m.OwnerID); err != nil {
			if errors.Is(err, store.ErrNoRows) {
				return domain.Machine{}, apperrors.BadRequest(apperrors.CodeValidationFailed, "owner is not a member of this organization")
			}
			return domain.Machine{}, err
		}
	}
	return s.queries.CreateMachine(ctx, m)
}
