// Package alerts turns raw PATH alert text into a cached, structured
// summary. A request is served from the cache when possible, otherwise it
// passes the per-text rate limiter and is sent to the primary model while
// shadow models are queried in the background for comparison.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"pathsummarizer/internal/domain"
	"pathsummarizer/internal/fingerprint"
	"pathsummarizer/internal/keyspace"
	"pathsummarizer/internal/summarizer"
)

const (
	tracerName = "pathsummarizer/internal/alerts"

	DefaultUpstreamTimeout = 25 * time.Second
	DefaultShadowTimeout   = 60 * time.Second
)

type Config struct {
	Model        string
	ShadowModels []string
	// UpstreamTimeout bounds the primary model call.
	UpstreamTimeout time.Duration
	// ShadowTimeout bounds each background shadow call.
	ShadowTimeout time.Duration
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte)
}

type Limiter interface {
	ShouldThrottle(ctx context.Context, text string) bool
}

type Service struct {
	cfg        Config
	keyspace   *keyspace.Keyspace
	cache      Cache
	limiter    Limiter
	summarizer summarizer.Summarizer
	shadows    sync.WaitGroup
	log        *slog.Logger
}

func New(
	cfg Config,
	ks *keyspace.Keyspace,
	c Cache,
	l Limiter,
	s summarizer.Summarizer,
	log *slog.Logger,
) *Service {
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = DefaultUpstreamTimeout
	}
	if cfg.ShadowTimeout <= 0 {
		cfg.ShadowTimeout = DefaultShadowTimeout
	}

	return &Service{
		cfg:        cfg,
		keyspace:   ks,
		cache:      c,
		limiter:    l,
		summarizer: s,
		log:        log,
	}
}

// VersionTag is the tag prefixing every key this service writes.
func (s *Service) VersionTag() keyspace.VersionTag {
	return s.keyspace.VersionTag()
}

// Summarize returns the summary for text. With skipCache the cache read is
// bypassed but the fresh result is still written back.
//
// Errors are ErrRateLimited or *UpstreamError.
func (s *Service) Summarize(
	ctx context.Context,
	text string,
	skipCache bool,
) (*domain.CachedRecord, error) {
	key := s.keyspace.Key(fingerprint.Of(text)).String()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "alerts.Summarize")
	defer span.End()
	span.SetAttributes(
		attribute.String("alerts.key", key),
		attribute.Bool("alerts.skip_cache", skipCache),
	)

	if !skipCache {
		if record, ok := s.cached(ctx, key); ok {
			span.SetAttributes(attribute.Bool("alerts.cached", true))

			return record, nil
		}
	}
	span.SetAttributes(attribute.Bool("alerts.cached", false))

	if s.limiter.ShouldThrottle(ctx, text) {
		s.log.WarnContext(ctx, "Alert is rate limited",
			"key", key)
		span.SetStatus(codes.Error, "rate limited")

		return nil, ErrRateLimited
	}

	s.startShadows(ctx, text)

	summary, err := s.summarize(ctx, text)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to summarize alert",
			"error", err,
			"model", s.cfg.Model,
			"key", key)
		span.RecordError(err)
		span.SetStatus(codes.Error, "upstream failure")

		return nil, &UpstreamError{Model: s.cfg.Model, Err: err}
	}

	record := domain.CachedRecord{
		Input:        text,
		Response:     summary,
		Model:        s.cfg.Model,
		CacheVersion: string(s.keyspace.VersionTag()),
	}

	data, err := json.Marshal(record)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to encode summary for cache",
			"error", err,
			"key", key)
	} else {
		s.cache.Put(ctx, key, data)
	}

	return &record, nil
}

// Wait blocks until every background shadow call has finished.
func (s *Service) Wait() {
	s.shadows.Wait()
}

func (s *Service) cached(ctx context.Context, key string) (*domain.CachedRecord, bool) {
	data, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}

	var record domain.CachedRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.log.WarnContext(ctx, "Ignoring undecodable cached summary",
			"error", err,
			"key", key)

		return nil, false
	}
	record.Cached = true

	return &record, true
}

func (s *Service) summarize(ctx context.Context, text string) (domain.AlertSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.UpstreamTimeout)
	defer cancel()

	summary, err := s.summarizer.Summarize(ctx, summarizer.Input{Text: text, Model: s.cfg.Model})
	if err != nil {
		return domain.AlertSummary{}, fmt.Errorf("call primary model: %w", err)
	}

	return summary, nil
}

// startShadows queries every shadow model in the background. Results are
// only logged; the caller never waits on them.
func (s *Service) startShadows(ctx context.Context, text string) {
	if len(s.cfg.ShadowModels) == 0 {
		return
	}

	shadowCtx := context.WithoutCancel(ctx)

	s.shadows.Add(1)
	go func() {
		defer s.shadows.Done()

		ctx, cancel := context.WithTimeout(shadowCtx, s.cfg.ShadowTimeout)
		defer cancel()

		var g errgroup.Group
		for _, model := range s.cfg.ShadowModels {
			g.Go(func() error {
				return s.runShadow(ctx, text, model)
			})
		}

		if err := g.Wait(); err != nil {
			s.log.DebugContext(ctx, "Shadow comparison finished with failures",
				"error", err)
		}
	}()
}

func (s *Service) runShadow(ctx context.Context, text string, model string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("shadow model panicked (model = %s): %v", model, r)
			s.log.ErrorContext(ctx, "Shadow model call panicked",
				"model", model,
				"panic", r)
		}
	}()

	summary, err := s.summarizer.Summarize(ctx, summarizer.Input{Text: text, Model: model})
	if err != nil {
		s.log.WarnContext(ctx, "Shadow model call failed",
			"error", err,
			"model", model)

		return fmt.Errorf("call shadow model (model = %s): %w", model, err)
	}

	s.log.InfoContext(ctx, "Shadow model response is received",
		"model", model,
		"summary", summary.Text.Text,
		"isDelay", summary.IsDelay,
		"isRelevant", summary.IsRelevant)

	return nil
}
