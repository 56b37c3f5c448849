package translator

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"codeberg.org/snonux/lingochain/internal/analytics"
	"codeberg.org/snonux/lingochain/internal/backend"
	"codeberg.org/snonux/lingochain/internal/cache"
)

const tracerName = "codeberg.org/snonux/lingochain/internal/translator"

// link is one resolved position of the fallback chain
type link struct {
	name    string
	backend backend.Backend
}

// Result is the detailed outcome of a translation
type Result struct {
	// Text is the translation, or the input when nothing could translate it
	Text string

	// Backend names the backend that produced Text, empty for cache hits
	// and passthroughs
	Backend string

	// Cached reports whether Text came from the cache
	Cached bool

	// Err is an *AllBackendsFailed when Text is the untranslated input
	Err error
}

// Orchestrator translates text through an ordered chain of backends. It owns
// no persistent state: the cache store and the analytics recorder are
// injected and shared.
type Orchestrator struct {
	cfg      Config
	backends map[string]backend.Backend
	chain    []link
	store    cache.Store
	rec      *analytics.Recorder
	logger   *zap.Logger
	tracer   trace.Tracer

	// sleep pauses between batch items
	sleep func(ctx context.Context, d time.Duration)
}

// New creates an orchestrator. The fallback chain is resolved against
// backends once; unknown names are dropped with a warning. A nil store
// disables caching, a nil recorder disables analytics.
func New(cfg Config, backends map[string]backend.Backend, store cache.Store, rec *analytics.Recorder, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = analytics.NewRecorder(analytics.Config{})
	}

	o := &Orchestrator{
		cfg:      cfg,
		backends: backends,
		store:    store,
		rec:      rec,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		sleep:    sleepContext,
	}
	o.chain = o.resolve(cfg.FallbackChain)
	return o
}

func (o *Orchestrator) resolve(names []string) []link {
	chain := make([]link, 0, len(names))
	for _, name := range names {
		b, ok := o.backends[name]
		if !ok {
			o.logger.Warn("unknown service in fallback chain", zap.String("backend", name))
			continue
		}
		chain = append(chain, link{name: name, backend: b})
	}
	return chain
}

// WithChain returns a copy of the orchestrator that only uses the named
// backends, in the given order. Cache and analytics stay shared.
func (o *Orchestrator) WithChain(names ...string) *Orchestrator {
	clone := *o
	clone.chain = o.resolve(names)
	return &clone
}

// Chain returns the resolved fallback chain in priority order
func (o *Orchestrator) Chain() []string {
	names := make([]string, 0, len(o.chain))
	for _, l := range o.chain {
		names = append(names, l.name)
	}
	return names
}

// Backend returns the configured backend called name
func (o *Orchestrator) Backend(name string) (backend.Backend, bool) {
	b, ok := o.backends[name]
	return b, ok
}

// Names returns the names of all configured backends in sorted order
func (o *Orchestrator) Names() []string {
	names := make([]string, 0, len(o.backends))
	for name := range o.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config returns the orchestrator configuration
func (o *Orchestrator) Config() Config {
	return o.cfg
}

// Translate translates text and returns the input unchanged when no backend
// could translate it. Empty languages resolve to the configured defaults.
func (o *Orchestrator) Translate(ctx context.Context, text, targetLang, sourceLang string) string {
	return o.TranslateDetailed(ctx, text, targetLang, sourceLang).Text
}

// TranslateDetailed is Translate with the outcome exposed
func (o *Orchestrator) TranslateDetailed(ctx context.Context, text, targetLang, sourceLang string) Result {
	targetLang, sourceLang = o.languages(targetLang, sourceLang)
	if text == "" {
		return Result{Text: text}
	}

	ctx, span := o.tracer.Start(ctx, "translator.Translate", trace.WithAttributes(
		attribute.String("lingochain.source_lang", sourceLang),
		attribute.String("lingochain.target_lang", targetLang),
	))
	defer span.End()

	useCache := o.cfg.Cache.Enabled && o.store != nil
	var key string
	if useCache {
		key = cache.Key(o.cfg.Cache.Prefix, sourceLang, targetLang, text)
		cached, ok, err := o.store.Get(ctx, key)
		switch {
		case err != nil:
			o.logger.Warn("cache unavailable, bypassing it", zap.Error(err))
			useCache = false
		case ok:
			o.rec.RecordCacheHit()
			span.SetAttributes(attribute.Bool("lingochain.cached", true))
			return Result{Text: cached, Cached: true}
		default:
			o.rec.RecordCacheMiss()
		}
	}

	if sourceLang == "auto" {
		sourceLang = o.DetectLanguage(ctx, text)
	}

	failures := make(map[string]error)
	for _, l := range o.chain {
		if !l.backend.Enabled() {
			continue
		}

		translated, err := o.attempt(ctx, l, text, targetLang, sourceLang)
		if err != nil {
			failures[l.name] = err
			o.logger.Warn("backend failed", zap.String("backend", l.name), zap.Error(err))
			continue
		}
		if translated == "" {
			failures[l.name] = errEmptyResult
			o.logger.Warn("backend failed", zap.String("backend", l.name), zap.Error(errEmptyResult))
			continue
		}

		if useCache {
			if err := o.store.Put(ctx, key, translated, o.cfg.Cache.TTL); err != nil {
				o.logger.Warn("failed to cache translation", zap.Error(err))
			}
		}
		o.rec.RecordTranslation(text, translated, targetLang, l.name)
		span.SetAttributes(attribute.String("lingochain.backend", l.name))
		return Result{Text: translated, Backend: l.name}
	}

	failed := &AllBackendsFailed{Errors: failures}
	errs := make(map[string]string, len(failures))
	for name, err := range failures {
		errs[name] = err.Error()
	}
	o.logger.Error("all translation backends failed",
		zap.Int("text_length", len(text)),
		zap.String("target_lang", targetLang),
		zap.Any("errors", errs),
	)
	o.rec.RecordFailure()
	span.SetStatus(codes.Error, "all translation backends failed")

	return Result{Text: text, Err: failed}
}

// attempt invokes one backend and records its latency. Calls rejected by an
// open circuit breaker never reached the service and are not sampled.
func (o *Orchestrator) attempt(ctx context.Context, l link, text, targetLang, sourceLang string) (string, error) {
	ctx, span := o.tracer.Start(ctx, "translator.attempt", trace.WithAttributes(
		attribute.String("lingochain.backend", l.name),
	))
	defer span.End()

	start := time.Now()
	translated, err := l.backend.Translate(ctx, text, targetLang, sourceLang)
	elapsed := time.Since(start)

	if !errors.Is(err, backend.ErrCircuitOpen) {
		o.rec.RecordLatency(l.name, elapsed)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return translated, err
}

// DetectLanguage returns the language of text. Only the default service is
// asked; on any failure the configured default source language is returned.
func (o *Orchestrator) DetectLanguage(ctx context.Context, text string) string {
	fallback := o.cfg.SourceLang
	if fallback == "" {
		fallback = "auto"
	}
	if !o.cfg.Detection.Enabled || text == "" {
		return fallback
	}

	useCache := o.cfg.Detection.CacheDetections && o.store != nil
	key := cache.DetectKey(o.cfg.Cache.Prefix, text)
	if useCache {
		cached, ok, err := o.store.Get(ctx, key)
		if err != nil {
			o.logger.Warn("cache unavailable, bypassing it", zap.Error(err))
			useCache = false
		} else if ok && cached != "" {
			return cached
		}
	}

	b, ok := o.backends[o.cfg.DefaultService]
	if !ok || !b.Enabled() {
		return fallback
	}

	detected, err := b.DetectLanguage(ctx, text)
	if err != nil {
		o.logger.Warn("language detection failed", zap.String("backend", o.cfg.DefaultService), zap.Error(err))
		return fallback
	}
	if detected == "" {
		return fallback
	}

	if useCache {
		if err := o.store.Put(ctx, key, detected, o.cfg.Cache.TTL); err != nil {
			o.logger.Warn("failed to cache detected language", zap.Error(err))
		}
	}
	return detected
}

// ClearCache flushes the whole cache store. The analytics snapshot shares
// the store and is written back afterwards.
func (o *Orchestrator) ClearCache(ctx context.Context) error {
	if o.store == nil {
		return nil
	}
	if err := o.store.Flush(ctx); err != nil {
		return err
	}
	o.logger.Info("translation cache cleared")

	if err := o.rec.Save(ctx, o.store, o.cfg.Cache.Prefix); err != nil {
		o.logger.Warn("failed to keep analytics after cache flush", zap.Error(err))
	}
	return nil
}

// ResetAnalytics drops the recorded analytics and their persisted snapshot
func (o *Orchestrator) ResetAnalytics(ctx context.Context) error {
	if o.store == nil {
		o.rec.Clear()
		return nil
	}
	return o.rec.Forget(ctx, o.store, o.cfg.Cache.Prefix)
}

// SaveAnalytics persists the analytics snapshot into the cache store
func (o *Orchestrator) SaveAnalytics(ctx context.Context) error {
	if o.store == nil {
		return nil
	}
	return o.rec.Save(ctx, o.store, o.cfg.Cache.Prefix)
}

// Analytics returns a snapshot of the recorded analytics
func (o *Orchestrator) Analytics() analytics.Snapshot {
	return o.rec.Snapshot()
}

// Recorder returns the analytics recorder
func (o *Orchestrator) Recorder() *analytics.Recorder {
	return o.rec
}

// Store returns the cache store, nil when caching is off
func (o *Orchestrator) Store() cache.Store {
	return o.store
}

func (o *Orchestrator) languages(targetLang, sourceLang string) (string, string) {
	if targetLang == "" {
		targetLang = o.cfg.TargetLang
	}
	if sourceLang == "" {
		sourceLang = o.cfg.SourceLang
	}
	if sourceLang == "" {
		sourceLang = "auto"
	}
	return targetLang, sourceLang
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
