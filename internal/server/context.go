package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/FredrikJonassonItsb/talkbridge/internal/auth"
	"github.com/FredrikJonassonItsb/talkbridge/internal/config"
	"github.com/FredrikJonassonItsb/talkbridge/internal/instrumentation"
	"github.com/FredrikJonassonItsb/talkbridge/internal/logging"
	"github.com/FredrikJonassonItsb/talkbridge/internal/nextcloud"
	"github.com/FredrikJonassonItsb/talkbridge/internal/storage"
)

// ServerContext holds the shared state for the MCP server: configuration,
// token storage, the authentication manager and the Nextcloud client. All
// tools operate against one Nextcloud account, the one whose tokens live in
// the configured store.
type ServerContext struct {
	ctx       context.Context
	cancel    context.CancelFunc
	cfg       *config.Config
	store     storage.Store
	tokens    *auth.Manager
	flow      *auth.FlowController
	nextcloud *nextcloud.Client
	sessions  *ProvisionSessionManager

	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger

	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new server context. The token store is opened
// eagerly so a broken cache directory surfaces at startup, not on first tool
// call.
func NewServerContext(ctx context.Context, cfg *config.Config, logger logging.Logger) (*ServerContext, error) {
	return NewServerContextWithStore(ctx, cfg, nil, logger)
}

// NewServerContextWithStore is like NewServerContext but uses the given
// token store. A nil store opens the default file store.
func NewServerContextWithStore(ctx context.Context, cfg *config.Config, store storage.Store, logger logging.Logger) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	if store == nil {
		var err error
		store, err = storage.NewFileStore()
		if err != nil {
			return nil, fmt.Errorf("failed to open token store: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithCancel(ctx)

	tokens := auth.NewManager(cfg, store, logger)
	ncClient := nextcloud.NewClient(cfg, tokens, logger)
	flow := auth.NewFlowController(cfg, tokens, store, ncClient, logger)

	return &ServerContext{
		ctx:       shutdownCtx,
		cancel:    cancel,
		cfg:       cfg,
		store:     store,
		tokens:    tokens,
		flow:      flow,
		nextcloud: ncClient,
		sessions:  NewProvisionSessionManager(logger),
	}, nil
}

// Context returns the server context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the Nextcloud configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Store returns the token store.
func (sc *ServerContext) Store() storage.Store {
	return sc.store
}

// TokenManager returns the token lifecycle manager.
func (sc *ServerContext) TokenManager() *auth.Manager {
	return sc.tokens
}

// FlowController returns the authentication flow controller.
func (sc *ServerContext) FlowController() *auth.FlowController {
	return sc.flow
}

// NextcloudClient returns the Nextcloud API client.
func (sc *ServerContext) NextcloudClient() *nextcloud.Client {
	return sc.nextcloud
}

// Sessions returns the provisioning session manager.
func (sc *ServerContext) Sessions() *ProvisionSessionManager {
	return sc.sessions
}

// SetMetrics sets the metrics recorder used by instrumented tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil if instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the audit logger used by instrumented tool handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the audit logger, or nil if audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// IsShutdown returns whether the server has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.sessions.Stop()
	sc.cancel()
	return nil
}
