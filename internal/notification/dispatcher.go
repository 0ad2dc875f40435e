package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pinpoint.dev/pinpoint/internal/domain"
	"pinpoint.dev/pinpoint/internal/mailer"
	"pinpoint.dev/pinpoint/internal/pkg/logger"
)

// dispatch delivers the gated results: one batch insert of in-app rows,
// then concurrent email sends. The in-app insert runs on the caller's
// transaction and its failure propagates; email failures are logged per
// recipient and never returned.
func (e *Engine) dispatch(ctx context.Context, s Store, event domain.Event, results []gateResult) error {
	now := time.Now().UTC()
	var rows []domain.Notification
	var emailIDs []string

	for _, r := range results {
		if r.inApp {
			rows = append(rows, domain.Notification{
				ID:           uuid.NewString(),
				UserID:       r.userID,
				Type:         event.Type,
				ResourceID:   event.ResourceID,
				ResourceType: event.ResourceType,
				CreatedAt:    now,
			})
		}
		if r.email {
			emailIDs = append(emailIDs, r.userID)
		}
	}

	if len(rows) > 0 {
		if err := s.InsertNotifications(ctx, rows); err != nil {
			return fmt.Errorf("insert notifications: %w", err)
		}
	}

	if e.mailer == nil || len(emailIDs) == 0 {
		return nil
	}

	addresses, err := s.FindEmailsByUserIDs(ctx, emailIDs)
	if err != nil {
		return fmt.Errorf("find recipient emails: %w", err)
	}
	e.sendEmails(ctx, event, emailIDs, addresses)
	return nil
}

// sendEmails fans the rendered message out over the mail pool, joins all
// sends, and logs per-recipient outcomes. It never fails the engine call.
func (e *Engine) sendEmails(ctx context.Context, event domain.Event, userIDs []string, addresses map[string]string) {
	subject := mailer.Subject(event.Type, event.Context)
	body := mailer.HTML(event.Type, event.Context)

	type outcome struct {
		userID string
		err    error
	}
	outcomes := make([]outcome, len(userIDs))

	// Detach cancellation so a queued send cannot be skipped between submit
	// and execution, which would leak a WaitGroup count. Sends in flight
	// complete even if the request context is cancelled.
	sendCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i, userID := range userIDs {
		addr, ok := addresses[userID]
		if !ok {
			outcomes[i] = outcome{userID: userID, err: fmt.Errorf("no email address on record")}
			continue
		}

		wg.Add(1)
		submitErr := e.pools.Mail.Submit(sendCtx, func(ctx context.Context) {
			defer wg.Done()
			outcomes[i] = outcome{
				userID: userID,
				err:    e.mailer.Send(ctx, mailer.Message{To: addr, Subject: subject, HTML: body}),
			}
		})
		if submitErr != nil {
			wg.Done()
			outcomes[i] = outcome{userID: userID, err: submitErr}
		}
	}
	wg.Wait()

	for _, o := range outcomes {
		if o.err != nil {
			logger.Warn("Email delivery failed",
				zap.String("event_type", string(event.Type)),
				zap.String("resource_id", event.ResourceID),
				zap.String("user_id", o.userID),
				zap.Error(o.err),
			)
		}
	}
}
