package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"pathsummarizer/internal/alerts"
	"pathsummarizer/internal/cache"
	"pathsummarizer/internal/config"
	"pathsummarizer/internal/keyspace"
	"pathsummarizer/internal/objectstore"
	"pathsummarizer/internal/objectstore/memstore"
	"pathsummarizer/internal/objectstore/s3store"
	"pathsummarizer/internal/objectstore/sqlitestore"
	"pathsummarizer/internal/prewarm"
	"pathsummarizer/internal/profile"
	"pathsummarizer/internal/ratelimiter"
	"pathsummarizer/internal/scheduler"
	"pathsummarizer/internal/summarizer"
	"pathsummarizer/internal/tracing"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg      config.Config
	profile  profile.Profile
	keyspace *keyspace.Keyspace
	service  *alerts.Service
	// expirer is nil when the backend expires markers on its own.
	expirer scheduler.Expirer
	closers []func() error
	log     *slog.Logger
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(log)

	return log
}

func loadProfile(ctx context.Context, cfg config.Config, log *slog.Logger) (profile.Profile, error) {
	path := strings.TrimSpace(cfg.ProfilePath)
	if path == "" {
		log.InfoContext(ctx, "Using embedded profile")

		return profile.Default(), nil
	}

	p, err := profile.Load(path)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load profile (path = %s): %w", path, err)
	}
	log.InfoContext(ctx, "Profile is loaded",
		"profilePath", path,
		"model", p.Model,
		"shadowModels", p.ShadowModels)

	return p, nil
}

func newKeyspace(p profile.Profile) *keyspace.Keyspace {
	return keyspace.New(keyspace.Inputs{
		Schema:        summarizer.AlertSummarySchemaJSON(),
		SystemMessage: p.SystemMessage,
		Model:         p.Model,
		CacheFormat:   p.CacheFormat,
	})
}

func newApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	p, err := loadProfile(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		profile:  p,
		keyspace: newKeyspace(p),
		log:      log,
	}

	cacheStore, limitStore, err := a.initStores(ctx)
	if err != nil {
		_ = a.close()

		return nil, fmt.Errorf("init stores: %w", err)
	}

	s, err := summarizer.NewOpenAISummarizer(summarizer.OpenAIConfig{
		APIKey:        cfg.OpenRouterAPIKey,
		BaseURL:       cfg.OpenRouterBaseURL,
		SystemMessage: p.SystemMessage,
		Referer:       p.Referer,
		Title:         p.Title,
	}, log)
	if err != nil {
		_ = a.close()

		return nil, fmt.Errorf("init summarizer: %w", err)
	}

	a.service = alerts.New(
		alerts.Config{
			Model:           p.Model,
			ShadowModels:    p.ShadowModels,
			UpstreamTimeout: cfg.UpstreamTimeout,
			ShadowTimeout:   cfg.ShadowTimeout,
		},
		a.keyspace,
		cache.New(cacheStore, log),
		ratelimiter.New(limitStore, cfg.RateLimitWindow, log),
		s,
		log,
	)

	log.InfoContext(ctx, "Service is initialized",
		"storeBackend", cfg.StoreBackend,
		"model", p.Model,
		"versionTag", a.keyspace.VersionTag())

	return a, nil
}

func (a *app) initStores(ctx context.Context) (objectstore.Store, objectstore.Store, error) {
	switch a.cfg.StoreBackend {
	case config.BackendS3:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg)

		return s3store.New(client, a.cfg.CacheBucket, a.log),
			s3store.New(client, a.cfg.RateLimitBucket, a.log),
			nil

	case config.BackendSQLite:
		db, err := sqlitestore.New(ctx, a.cfg.SQLitePath, a.log)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite (path = %s): %w", a.cfg.SQLitePath, err)
		}
		a.closers = append(a.closers, db.Close)

		rateLimitBucket := a.cfg.RateLimitBucket
		a.expirer = scheduler.ExpirerFunc(func(ctx context.Context, cutoff time.Time) (int64, error) {
			return db.Expire(ctx, rateLimitBucket, cutoff)
		})

		return db.Bucket(a.cfg.CacheBucket), db.Bucket(rateLimitBucket), nil

	case config.BackendMemory:
		return memstore.New(a.cfg.MemoryEntries), memstore.New(a.cfg.MemoryEntries), nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend)
	}
}

func (a *app) newPrewarmer() *prewarm.Prewarmer {
	var src prewarm.Source
	if a.cfg.PrewarmSource == config.SourceFeed {
		src = prewarm.NewFeedSource(a.cfg.PrewarmURL)
	} else {
		src = prewarm.NewPathContentSource(a.cfg.PrewarmURL, a.cfg.PathAppAPIKey, a.log)
	}

	return prewarm.New(src, a.service, a.cfg.PrewarmConcurrency, a.log)
}

func (a *app) close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// bootstrap parses the environment and installs logging and tracing.
func bootstrap(ctx context.Context) (config.Config, *slog.Logger, tracing.ShutdownFunc, error) {
	cfg, err := config.Parse()
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	log := newLogger(cfg.LogLevel)

	shutdown, err := tracing.Setup(ctx, cfg.TraceExporter, serviceName, version)
	if err != nil {
		log.ErrorContext(ctx, "Failed to set up tracing",
			"error", err,
			"exporter", cfg.TraceExporter)

		return config.Config{}, nil, nil, err
	}

	return cfg, log, shutdown, nil
}
