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

// IssueRef is the resource-lookup projection the notification engine needs:
// the issue plus its machine's id and name, fetched in one query.
type IssueRef struct {
	ID          string
	OrgID       string
	MachineID   string
	MachineName string
	Title       string
	Number      int
}

// MachineRef is the machine-side resource-lookup projection.
type MachineRef struct {
	ID    string
	OrgID string
	Name  string
}

// InsertIssue inserts a new issue, allocating the next org-scoped issue
// number in the same statement. Must run inside the caller's transaction so
// the number allocation is atomic with the insert.
func (q *Queries) InsertIssue(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	if strings.TrimSpace(issue.Title) == "" {
		return domain.Issue{}, fmt.Errorf("issue title must not be empty")
	}
	if issue.ID == "" {
		issue.ID = uuid.NewString()
	}
	if issue.Status == "" {
		issue.Status = domain.IssueStatusNew
	}
	now := time.Now().UTC()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	err := q.db.QueryRow(ctx, `
		INSERT INTO issues (id, org_id, machine_id, number, title, description,
			status, assignee_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(number), 0) + 1 FROM issues WHERE org_id = $2),
			$4, $5, $6, $7, $8, $9, $9)
		RETURNING number`,
		issue.ID, issue.OrgID, issue.MachineID, issue.Title, issue.Description,
		issue.Status, nullString(issue.AssigneeID), nullString(issue.CreatedBy), now,
	).Scan(&issue.Number)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("insert issue: %w", err)
	}
	return issue, nil
}

// GetIssueByID fetches one issue.
func (q *Queries) GetIssueByID(ctx context.Context, id string) (domain.Issue, error) {
	var issue domain.Issue
	var assignee, createdBy sql.NullString
	err := q.db.QueryRow(ctx, `
		SELECT id, org_id, machine_id, number, title, description, status,
			assignee_id, created_by, created_at, updated_at
		FROM issues WHERE id = $1`, id,
	).Scan(&issue.ID, &issue.OrgID, &issue.MachineID, &issue.Number,
		&issue.Title, &issue.Description, &issue.Status,
		&assignee, &createdBy, &issue.CreatedAt, &issue.UpdatedAt)
	if err != nil {
		return domain.Issue{}, fmt.Errorf("get issue %s: %w", id, err)
	}
	issue.AssigneeID = assignee.String
	issue.CreatedBy = createdBy.String
	return issue, nil
}

// GetIssueRef fetches the issue together with its machine in one query.
func (q *Queries) GetIssueRef(ctx context.Context, id string) (IssueRef, error) {
	var ref IssueRef
	err := q.db.QueryRow(ctx, `
		SELECT i.id, i.org_id, i.machine_id, m.name, i.title, i.number
		FROM issues i
		JOIN machines m ON m.id = i.machine_id
		WHERE i.id = $1`, id,
	).Scan(&ref.ID, &ref.OrgID, &ref.MachineID, &ref.MachineName, &ref.Title, &ref.Number)
	if err != nil {
		return IssueRef{}, fmt.Errorf("get issue ref %s: %w", id, err)
	}
	return ref, nil
}

// GetMachineRef fetches the machine projection used for event resolution.
func (q *Queries) GetMachineRef(ctx context.Context, id string) (MachineRef, error) {
	var ref MachineRef
	err := q.db.QueryRow(ctx, `
		SELECT id, org_id, name FROM machines WHERE id = $1`, id,
	).Scan(&ref.ID, &ref.OrgID, &ref.Name)
	if err != nil {
		return MachineRef{}, fmt.Errorf("get machine ref %s: %w", id, err)
	}
	return ref, nil
}

// ListIssues returns issues in an organization, optionally filtered by
// machine and status. Empty filters match everything.
func (q *Queries) ListIssues(ctx context.Context, orgID, machineID string, status domain.IssueStatus) ([]domain.Issue, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, org_id, machine_id, number, title, description, status,
			assignee_id, created_by, created_at, updated_at
		FROM issues
		WHERE org_id = $1
			AND ($2 = '' OR machine_id = $2)
			AND ($3 = '' OR status = $3)
		ORDER BY number DESC`,
		orgID, machineID, string(status))
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	defer rows.Close()

	var issues []domain.Issue
	for rows.Next() {
		var issue domain.Issue
		var assignee, createdBy sql.NullString
		if err := rows.Scan(&issue.ID, &issue.OrgID, &issue.MachineID, &issue.Number,
			&issue.Title, &issue.Description, &issue.Status,
			&assignee, &createdBy, &issue.CreatedAt, &issue.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issue.AssigneeID = assignee.String
		issue.CreatedBy = createdBy.String
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

// ListOpenIssueIDsByMachine returns ids of unresolved issues on a machine.
func (q *Queries) ListOpenIssueIDsByMachine(ctx context.Context, machineID string) ([]string, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id FROM issues
		WHERE machine_id = $1 AND status IN ('new', 'in_progress')
		ORDER BY number`, machineID)
	if err != nil {
		return nil, fmt.Errorf("list open issues for machine %s: %w", machineID, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan issue id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetIssueStatus updates an issue's status. Returns rows affected.
func (q *Queries) SetIssueStatus(ctx context.Context, issueID string, status domain.IssueStatus) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE issues SET status = $2, updated_at = now() WHERE id = $1`,
		issueID, status)
	if err != nil {
		return 0, fmt.Errorf("set issue %s status: %w", issueID, err)
	}
	return tag.RowsAffected(), nil
}

// SetIssueAssignee updates an issue's assignee. Returns rows affected.
func (q *Queries) SetIssueAssignee(ctx context.Context, issueID, assigneeID string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE issues SET assignee_id = $2, updated_at = now() WHERE id = $1`,
		issueID, nullString(assigneeID))
	if err != nil {
		return 0, fmt.Errorf("set issue %s assignee: %w", issueID, err)
	}
	return tag.RowsAffected(), nil
}

// InsertComment inserts a comment on an issue.
func (q *Queries) InsertComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	if strings.TrimSpace(c.Content) == "" {
		return domain.Comment{}, fmt.Errorf("comment content must not be empty")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()

	_, err := q.db.Exec(ctx, `
		INSERT INTO comments (id, issue_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.IssueID, nullString(c.AuthorID), c.Content, c.CreatedAt,
	)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

// ListComments returns an issue's comments oldest first.
func (q *Queries) ListComments(ctx context.Context, issueID string) ([]domain.Comment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, issue_id, author_id, content, created_at
		FROM comments WHERE issue_id = $1 ORDER BY created_at`, issueID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var c domain.Comment
		var author sql.NullString
		if err := rows.Scan(&c.ID, &c.IssueID, &author, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.AuthorID = author.String
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
