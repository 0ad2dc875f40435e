package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pinpoint.dev/pinpoint/internal/pkg/logger"
)

// Start launches background services. The HTTP server is run by the
// caller; Start only brings up the River job consumer.
func (a *Application) Start(ctx context.Context) error {
	if a.DB == nil || a.DB.RiverClient == nil {
		return nil
	}
	if err := a.DB.RiverClient.Start(ctx); err != nil {
		return fmt.Errorf("start river client: %w", err)
	}
	logger.Info("Background job consumer started")
	return nil
}

// Shutdown stops components in dependency order: the job consumer first,
// then the worker pools so in-flight email sends drain, then the database.
func (a *Application) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.DB != nil && a.DB.RiverClient != nil {
		if err := a.DB.RiverClient.Stop(ctx); err != nil {
			logger.Error("Failed to stop job consumer", zap.Error(err))
		}
	}
	if a.Pools != nil {
		a.Pools.Shutdown()
	}
	if a.DB != nil {
		a.DB.Close()
	}
	logger.Info("Application shut down")
}
