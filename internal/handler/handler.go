package handler

import (
	"context"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
	"github.com/hexsyn/intake/internal/pipeline"
)

// Submitter runs submissions through the intake pipeline
type Submitter interface {
	Submit(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	Notify(ctx context.Context, kind model.Kind, name string, fields map[string]any) (*pipeline.Result, error)
}

// ConnectionTester checks the mail transport
type ConnectionTester interface {
	Verify(ctx context.Context) error
}

// Dependency is an external service reported by the health endpoints
type Dependency interface {
	Name() string
	HealthCheck(ctx context.Context) error
}

// Handler holds all HTTP handlers
type Handler struct {
	intake Submitter
	mail   ConnectionTester
	deps   []Dependency
	log    *logger.Logger
	cfg    *config.Config
}

// New creates a new Handler instance
func New(intake Submitter, mail ConnectionTester, log *logger.Logger, cfg *config.Config, deps ...Dependency) *Handler {
	return &Handler{
		intake: intake,
		mail:   mail,
		deps:   deps,
		log:    log.WithComponent("handler"),
		cfg:    cfg,
	}
}
