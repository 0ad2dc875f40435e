// Package notification implements PinPoint's notification engine: recipient
// resolution, preference gating, the new-issue auto-subscribe side effect,
// and delivery fan-out to the in-app inbox and email.
//
// The engine runs inside the caller's transaction: every store read and
// write goes through the Store the caller passes in, which the calling use
// case binds to its open transaction. Email delivery is best-effort and
// never fails the call; store failures propagate so the caller can roll
// back the triggering mutation.
package notification

import (
	"context"
	"fmt"

	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/mailer"
	"pinpoint.dev/pinpoint/internal/pkg/worker"
	"pinpoint.dev/pinpoint/internal/store"
)

// Store is the data access the engine needs. *store.Queries satisfies it;
// callers pass queries.WithTx(tx) so all reads and writes share the
// triggering mutation's transaction.
type Store interface {
	GetIssueRef(ctx context.Context, id string) (store.IssueRef, error)
	GetMachineRef(ctx context.Context, id string) (store.MachineRef, error)

	FindIssueWatchers(ctx context.Context, issueID string) ([]string, error)
	FindMachineWatchers(ctx context.Context, machineID string) ([]domain.MachineWatcher, error)
	FindGlobalSubscriberIDs(ctx context.Context, orgID string) ([]string, error)
	FindPreferencesByUserIDs(ctx context.Context, userIDs []string) ([]domain.Preference, error)
	FindEmailsByUserIDs(ctx context.Context, userIDs []string) (map[string]string, error)

	InsertIssueWatchers(ctx context.Context, issueID string, userIDs []string) error
	InsertNotifications(ctx context.Context, notifications []domain.Notification) error
}

var _ Store = (*store.Queries)(nil)

// Engine fans an event out to its recipients. Safe for concurrent use; all
// per-invocation state lives on the stack.
type Engine struct {
	mailer mailer.Mailer // nil when SMTP is not configured
	pools  *worker.Pools
}

// NewEngine builds the engine. A nil mailer disables the email channel;
// in-app delivery is unaffected.
func NewEngine(m mailer.Mailer, pools *worker.Pools) *Engine {
	return &Engine{mailer: m, pools: pools}
}

// Notify resolves, gates, and delivers one event. It returns an error only
// when a store or batch query fails; individual email failures are logged
// and swallowed. The caller must roll back its transaction on error.
func (e *Engine) Notify(ctx context.Context, s Store, event domain.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	res, err := resolveResource(ctx, s, &event)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	candidates, autoSubscribe, err := sourceRecipients(ctx, s, res, event)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	// Promote subscribe-mode machine watchers to issue watchers before any
	// notification rows exist, so a retried event stays idempotent. The
	// promotion is a side effect of the new issue itself, not of delivery:
	// it happens even when actor exclusion leaves nobody to notify, so a
	// reporter subscribed to their own machine still follows the new issue.
	if event.Type == domain.EventNewIssue && event.ResourceType == domain.ResourceIssue && len(autoSubscribe) > 0 {
		if err := s.InsertIssueWatchers(ctx, event.ResourceID, autoSubscribe); err != nil {
			return fmt.Errorf("notify: auto-subscribe: %w", err)
		}
	}

	recipients := applyActorPolicy(candidates, event)
	if len(recipients) == 0 {
		return nil
	}

	prefs, err := loadPreferences(ctx, s, recipients)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	results := gateRecipients(recipients, prefs, event.Type)
	if err := e.dispatch(ctx, s, event, results); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// loadPreferences batch-fetches preference rows for the recipient set and
// substitutes defaults for every recipient without a persisted row.
func loadPreferences(ctx context.Context, s Store, recipients []string) (map[string]domain.Preference, error) {
	rows, err := s.FindPreferencesByUserIDs(ctx, recipients)
	if err != nil {
		return nil, err
	}

	prefs := make(map[string]domain.Preference, len(recipients))
	for _, p := range rows {
		prefs[p.UserID] = p
	}
	for _, id := range recipients {
		if _, ok := prefs[id]; !ok {
			prefs[id] = domain.DefaultPreferences(id)
		}
	}
	return prefs, nil
}
