// Package usecase holds the transactional application services. Each
// mutation opens one transaction, performs its writes through a
// transaction-bound store, runs the notification engine on that same
// transaction, and commits. A notification dependency failure rolls the
// whole mutation back.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/notification"
	apperrors "pinpoint.dev/pinpoint/internal/pkg/errors"
	"pinpoint.dev/pinpoint/internal/pkg/logger"
	"pinpoint.dev/pinpoint/internal/store"
)

// Notifier is the notification engine surface the services depend on.
type Notifier interface {
	Notify(ctx context.Context, s notification.Store, event domain.Event) error
}

var _ Notifier = (*notification.Engine)(nil)

// lookupErr maps an org-scoped store lookup onto the caller-facing error.
// A row miss and a cross-org id both surface as notFound so resource ids
// are not probeable; any other store failure propagates untouched.
func lookupErr(err error, sameOrg bool, notFound *apperrors.AppError) error {
	switch {
	case errors.Is(err, store.ErrNoRows):
		return notFound
	case err != nil:
		return err
	case !sameOrg:
		return notFound
	}
	return nil
}

// IssueService implements the issue mutations.
type IssueService struct {
	db       *pgxpool.Pool
	queries  *store.Queries
	notifier Notifier
}

func NewIssueService(db *pgxpool.Pool, queries *store.Queries, notifier Notifier) *IssueService {
	return &IssueService{db: db, queries: queries, notifier: notifier}
}

// CreateIssueInput is the caller's issue report. ReporterID is empty for
// anonymous reports.
type CreateIssueInput struct {
	OrgID       string
	MachineID   string
	Title       string
	Description string
	ReporterID  string
}

// CreateIssue inserts the issue, allocating its org-scoped number, and
// fans out the new_issue event, all in one transaction.
func (s *IssueService) CreateIssue(ctx context.Context, in CreateIssueInput) (domain.Issue, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	machine, err := qtx.GetMachineRef(ctx, in.MachineID)
	if err := lookupErr(err, machine.OrgID == in.OrgID, apperrors.ErrMachineNotFoundf(in.MachineID)); err != nil {
		return domain.Issue{}, err
	}

	issue, err := qtx.InsertIssue(ctx, domain.Issue{
		OrgID:       in.OrgID,
		MachineID:   in.MachineID,
		Title:       in.Title,
		Description: in.Description,
		CreatedBy:   in.ReporterID,
	})
	if err != nil {
		return domain.Issue{}, err
	}

	if err := s.notifier.Notify(ctx, qtx, newIssueEvent(issue, machine.Name, in.ReporterID)); err != nil {
		return domain.Issue{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Issue{}, fmt.Errorf("commit create issue: %w", err)
	}
	logger.Info("Issue created",
		zap.String("issue_id", issue.ID),
		zap.String("org_id", issue.OrgID),
		zap.Int("number", issue.Number),
	)
	return issue, nil
}

// UpdateStatus moves an issue through the status state machine and fans out
// issue_status_changed to the issue's watchers.
func (s *IssueService) UpdateStatus(ctx context.Context, orgID, issueID string, to domain.IssueStatus, actorID string) (domain.Issue, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	issue, err := qtx.GetIssueByID(ctx, issueID)
	if err := lookupErr(err, issue.OrgID == orgID, apperrors.ErrIssueNotFoundf(issueID)); err != nil {
		return domain.Issue{}, err
	}
	if !domain.CanTransition(issue.Status, to) {
		return domain.Issue{}, apperrors.ErrInvalidTransitionf(string(issue.Status), string(to))
	}

	if _, err := qtx.SetIssueStatus(ctx, issueID, to); err != nil {
		return domain.Issue{}, err
	}
	issue.Status = to

	if err := s.notifier.Notify(ctx, qtx, statusChangedEvent(issueID, actorID, to)); err != nil {
		return domain.Issue{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Issue{}, fmt.Errorf("commit status update: %w", err)
	}
	return issue, nil
}

// AddComment appends a comment and fans out new_comment to the issue's
// watchers, excluding the author.
func (s *IssueService) AddComment(ctx context.Context, orgID, issueID, authorID, content string) (domain.Comment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	issue, err := qtx.GetIssueRef(ctx, issueID)
	if err := lookupErr(err, issue.OrgID == orgID, apperrors.ErrIssueNotFoundf(issueID)); err != nil {
		return domain.Comment{}, err
	}

	comment, err := qtx.InsertComment(ctx, domain.Comment{
		IssueID:  issueID,
		AuthorID: authorID,
		Content:  content,
	})
	if err != nil {
		return domain.Comment{}, err
	}

	if err := s.notifier.Notify(ctx, qtx, newCommentEvent(issueID, authorID, content)); err != nil {
		return domain.Comment{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Comment{}, fmt.Errorf("commit comment: %w", err)
	}
	return comment, nil
}

// Assign sets the issue's assignee and fans out issue_assigned, with the
// assignee force-included as a recipient.
func (s *IssueService) Assign(ctx context.Context, orgID, issueID, assigneeID, actorID string) (domain.Issue, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	qtx := s.queries.WithTx(tx)

	issue, err := qtx.GetIssueByID(ctx, issueID)
	if err := lookupErr(err, issue.OrgID == orgID, apperrors.ErrIssueNotFoundf(issueID)); err != nil {
		return domain.Issue{}, err
	}
	if _, err := qtx.GetMembership(ctx, orgID, assigneeID); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return domain.Issue{}, apperrors.BadRequest(apperrors.CodeValidationFailed, "assignee is not a member of this organization")
		}
		return domain.Issue{}, err
	}

	if _, err := qtx.SetIssueAssignee(ctx, issueID, assigneeID); err != nil {
		return domain.Issue{}, err
	}
	issue.AssigneeID = assigneeID

	if err := s.notifier.Notify(ctx, qtx, issueAssignedEvent(issueID, assigneeID, actorID)); err != nil {
		return domain.Issue{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Issue{}, fmt.Errorf("commit assign: %w", err)
	}
	return issue, nil
}
