// Package app is the composition root: manual DI, orchestration only.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"pinpoint.dev/pinpoint/internal/api/handlers"
	"pinpoint.dev/pinpoint/internal/api/middleware"
	"pinpoint.dev/pinpoint/internal/config"
	"pinpoint.dev/pinpoint/internal/infrastructure"
	"pinpoint.dev/pinpoint/internal/jobs"
	"pinpoint.dev/pinpoint/internal/mailer"
	"pinpoint.dev/pinpoint/internal/notification"
	"pinpoint.dev/pinpoint/internal/pkg/logger"
	"pinpoint.dev/pinpoint/internal/pkg/worker"
	"pinpoint.dev/pinpoint/internal/usecase"
)

// Application holds composed application dependencies.
type Application struct {
	Config *config.Config
	Router *gin.Engine
	DB     *infrastructure.DatabaseClients
	Pools  *worker.Pools
}

// Bootstrap initializes all dependencies.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
		MailPoolSize:    cfg.Worker.MailPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	var m mailer.Mailer
	if cfg.SMTP.Enabled() {
		smtpMailer := mailer.NewSMTPMailer(cfg.SMTP)
		m = smtpMailer
		// Surface relay misconfiguration in the logs without blocking boot.
		if err := pools.SubmitDetached("mail", func(ctx context.Context) {
			if err := smtpMailer.Ping(ctx); err != nil {
				logger.Warn("SMTP relay unreachable", zap.Error(err))
			}
		}); err != nil {
			logger.Warn("Could not schedule SMTP reachability check", zap.Error(err))
		}
	} else {
		logger.Warn("SMTP not configured; email notifications disabled")
	}

	engine := notification.NewEngine(m, pools)
	issueSvc := usecase.NewIssueService(db.Pool, db.Queries, engine)
	machineSvc := usecase.NewMachineService(db.Pool, db.Queries, engine)
	inboxSvc := usecase.NewInboxService(db.Queries)

	workers := river.NewWorkers()
	river.AddWorker(workers, jobs.NewNotificationCleanupWorker(db.Queries, cfg.Notification.Retention))
	if err := db.InitRiverClient(workers, cfg.River); err != nil {
		pools.Shutdown()
		db.Close()
		return nil, fmt.Errorf("init river: %w", err)
	}

	// Inbox retention cleanup: daily, and once on startup.
	db.RiverClient.PeriodicJobs().Add(
		river.NewPeriodicJob(
			river.PeriodicInterval(24*time.Hour),
			func() (river.JobArgs, *river.InsertOpts) {
				return jobs.NotificationCleanupArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	)

	jwtCfg := middleware.JWTConfig{
		SigningKey: []byte(cfg.Security.SessionSecret),
		Issuer:     cfg.Security.TokenIssuer,
		ExpiresIn:  cfg.Security.TokenLifetime,
	}

	server := handlers.NewServer(handlers.ServerDeps{
		Pool:     db.Pool,
		Queries:  db.Queries,
		JWTCfg:   jwtCfg,
		Issues:   issueSvc,
		Machines: machineSvc,
		Inbox:    inboxSvc,
		Pools:    pools,
	})

	return &Application{
		Config: cfg,
		Router: newRouter(cfg, server, db, jwtCfg),
		DB:     db,
		Pools:  pools,
	}, nil
}
