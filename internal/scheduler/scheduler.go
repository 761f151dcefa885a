package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"pathsummarizer/internal/prewarm"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	prewarmTimeout        = 5 * time.Minute
	expireTimeout         = time.Minute
)

type Prewarmer interface {
	Run(ctx context.Context) (prewarm.Result, error)
}

// Expirer deletes rate-limit markers last written before cutoff.
type Expirer interface {
	Expire(ctx context.Context, cutoff time.Time) (int64, error)
}

// ExpirerFunc adapts a function to Expirer.
type ExpirerFunc func(ctx context.Context, cutoff time.Time) (int64, error)

func (f ExpirerFunc) Expire(ctx context.Context, cutoff time.Time) (int64, error) {
	return f(ctx, cutoff)
}

type Config struct {
	// PrewarmSpec is a cron spec; empty disables prewarming.
	PrewarmSpec string
	// ExpireSpec is a cron spec; empty disables marker expiry.
	ExpireSpec string
	// Retention is how long a marker is kept after its last write.
	Retention time.Duration
}

type Scheduler struct {
	ctx       context.Context
	cron      *cron.Cron
	cfg       Config
	prewarmer Prewarmer
	expirer   Expirer
	now       func() time.Time
	log       *slog.Logger
}

// New builds a scheduler. A nil prewarmer or expirer disables that job.
func New(
	ctx context.Context,
	cfg Config,
	prewarmer Prewarmer,
	expirer Expirer,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:       ctx,
		cron:      c,
		cfg:       cfg,
		prewarmer: prewarmer,
		expirer:   expirer,
		now:       time.Now,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	var errs []error

	if s.cfg.PrewarmSpec != "" && s.prewarmer != nil {
		if _, err := s.cron.AddFunc(s.cfg.PrewarmSpec, s.runPrewarm); err != nil {
			errs = append(errs, err)
		}
	}

	if s.cfg.ExpireSpec != "" && s.expirer != nil {
		if s.cfg.Retention <= 0 {
			errs = append(errs, errors.New("marker retention must be positive"))
		} else if _, err := s.cron.AddFunc(s.cfg.ExpireSpec, s.expireMarkers); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop halts scheduling and waits for running jobs to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runPrewarm() {
	ctx, cancel := context.WithTimeout(s.ctx, prewarmTimeout)
	defer cancel()

	if !s.ready(ctx) {
		return
	}

	result, err := s.prewarmer.Run(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to prewarm alert summaries",
			"error", err,
			"alerts", result.Alerts,
			"failed", result.Failed)
	}
}

func (s *Scheduler) expireMarkers() {
	ctx, cancel := context.WithTimeout(s.ctx, expireTimeout)
	defer cancel()

	if !s.ready(ctx) {
		return
	}

	cutoff := s.now().Add(-s.cfg.Retention)

	n, err := s.expirer.Expire(ctx, cutoff)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to expire rate limit markers",
			"error", err,
			"cutoff", cutoff)

		return
	}

	s.log.InfoContext(ctx, "Rate limit markers are expired",
		"deleted", n,
		"cutoff", cutoff)
}

func (s *Scheduler) ready(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return false
	default:
		return true
	}
}
