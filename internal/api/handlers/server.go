// Package handlers implements PinPoint's HTTP API on gin. Route
// registration lives in internal/app; handlers only implement methods.
package handlers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"pinpoint.dev/pinpoint/internal/api/middleware"
	"pinpoint.dev/pinpoint/internal/pkg/worker"
	"pinpoint.dev/pinpoint/internal/store"
	"pinpoint.dev/pinpoint/internal/usecase"
)

// Server implements all API handlers.
type Server struct {
	pool     *pgxpool.Pool
	queries  *store.Queries
	jwtCfg   middleware.JWTConfig
	issues   *usecase.IssueService
	machines *usecase.MachineService
	inbox    *usecase.InboxService
	pools    *worker.Pools
}

// ServerDeps holds all dependencies for creating a Server. Manual DI, no
// wire.
type ServerDeps struct {
	Pool     *pgxpool.Pool
	Queries  *store.Queries
	JWTCfg   middleware.JWTConfig
	Issues   *usecase.IssueService
	Machines *usecase.MachineService
	Inbox    *usecase.InboxService
	Pools    *worker.Pools
}

// NewServer creates a new Server with all dependencies.
func NewServer(deps ServerDeps) *Server {
	return &Server{
		pool:     deps.Pool,
		queries:  deps.Queries,
		jwtCfg:   deps.JWTCfg,
		issues:   deps.Issues,
		machines: deps.Machines,
		inbox:    deps.Inbox,
		pools:    deps.Pools,
	}
}
