package processor

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"codeberg.org/snonux/lingochain/internal/analytics"
	"codeberg.org/snonux/lingochain/internal/backend"
	"codeberg.org/snonux/lingochain/internal/cache"
	"codeberg.org/snonux/lingochain/internal/config"
	"codeberg.org/snonux/lingochain/internal/translator"
	"codeberg.org/snonux/lingochain/internal/tree"
)

// Processor coordinates the translation commands
type Processor struct {
	cfg        *config.Config
	orch       *translator.Orchestrator
	trees      *tree.Translator
	closeStore func() error
	logger     *zap.Logger
	out        io.Writer
	errOut     io.Writer
}

// New builds every backend named in cfg, opens the cache store and restores
// the persisted analytics
func New(cfg *config.Config, logger *zap.Logger) (*Processor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	backends, err := backend.Build(cfg.Services, cfg.Breaker)
	if err != nil {
		return nil, fmt.Errorf("failed to set up backends: %w", err)
	}

	store, closeStore, err := cache.Open(cfg.Cache.Driver, cfg.Cache.Path, cfg.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	p := NewWithBackends(cfg, backends, store, logger)
	p.closeStore = closeStore

	if err := p.orch.Recorder().Load(context.Background(), store, cfg.Cache.Prefix); err != nil {
		// Stale or unreadable analytics are not worth failing for
		logger.Warn("failed to restore analytics", zap.Error(err))
	}
	return p, nil
}

// NewWithBackends creates a processor around already built collaborators.
// store may be nil to run without cache and analytics persistence.
func NewWithBackends(cfg *config.Config, backends map[string]backend.Backend, store cache.Store, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	rec := analytics.NewRecorder(cfg.Analytics)
	orch := translator.New(cfg.Translator(), backends, store, rec, logger)

	return &Processor{
		cfg:        cfg,
		orch:       orch,
		trees:      tree.NewTranslator(orch),
		closeStore: func() error { return nil },
		logger:     logger,
		out:        os.Stdout,
		errOut:     os.Stderr,
	}
}

// SetOutput redirects command output, mainly for tests
func (p *Processor) SetOutput(out, errOut io.Writer) {
	p.out = out
	p.errOut = errOut
}

// Orchestrator returns the translation orchestrator
func (p *Processor) Orchestrator() *translator.Orchestrator {
	return p.orch
}

// Trees returns the tree translator
func (p *Processor) Trees() *tree.Translator {
	return p.trees
}

// Config returns the configuration the processor was built with
func (p *Processor) Config() *config.Config {
	return p.cfg
}

// Close persists the analytics and closes the cache store
func (p *Processor) Close(ctx context.Context) error {
	if err := p.orch.SaveAnalytics(ctx); err != nil {
		p.logger.Warn("failed to persist analytics", zap.Error(err))
	}
	if err := p.closeStore(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}
	return nil
}

// chain returns the orchestrator restricted to service, or the full chain
// when service is empty
func (p *Processor) chain(service string) (*translator.Orchestrator, error) {
	if service == "" {
		return p.orch, nil
	}
	if _, ok := p.orch.Backend(service); !ok {
		return nil, fmt.Errorf("unknown service: %s", service)
	}
	return p.orch.WithChain(service), nil
}

// Logger returns the processor's logger
func (p *Processor) Logger() *zap.Logger {
	return p.logger
}

// Output returns the writer command output goes to
func (p *Processor) Output() io.Writer {
	return p.out
}
