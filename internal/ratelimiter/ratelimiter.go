package ratelimiter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"pathsummarizer/internal/fingerprint"
	"pathsummarizer/internal/objectstore"
)

const DefaultWindow = 30 * time.Second

// marker is the body stored per fingerprint. encoding/json matches keys
// case-insensitively, so markers written as "LastModified" still decode.
type marker struct {
	LastModified string `json:"lastModified"`
}

// RateLimiter suppresses repeats of identical input within a fixed window
// that starts at the first admitted request. Markers are keyed by the raw
// text fingerprint so they survive cache version changes.
type RateLimiter struct {
	store  objectstore.Store
	window time.Duration
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*RateLimiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

func New(store objectstore.Store, window time.Duration, log *slog.Logger, opts ...Option) *RateLimiter {
	if window <= 0 {
		window = DefaultWindow
	}

	rl := &RateLimiter{
		store:  store,
		window: window,
		now:    time.Now,
		log:    log,
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// ShouldThrottle reports whether text was admitted within the window.
// A throttled call writes nothing. Store faults fail open.
func (rl *RateLimiter) ShouldThrottle(ctx context.Context, text string) bool {
	key := fingerprint.Of(text).String()
	now := rl.now()

	lastModified, err := rl.lastModified(ctx, key)
	switch {
	case errors.Is(err, objectstore.ErrNotFound):
	case err != nil:
		rl.log.WarnContext(ctx, "Failed to check rate limit marker so request is admitted",
			"error", err,
			"key", key)
	default:
		if elapsed := now.Sub(lastModified); elapsed <= rl.window {
			rl.log.InfoContext(ctx, "Request is rate limited",
				"key", key,
				"elapsed", elapsed,
				"window", rl.window)

			return true
		}
	}

	if err = rl.mark(ctx, key, now); err != nil {
		rl.log.ErrorContext(ctx, "Failed to write rate limit marker",
			"error", err,
			"key", key)
	}

	return false
}

func (rl *RateLimiter) lastModified(ctx context.Context, key string) (time.Time, error) {
	data, err := rl.store.Get(ctx, key)
	if err != nil {
		return time.Time{}, err
	}

	var m marker
	if err = json.Unmarshal(data, &m); err != nil {
		return time.Time{}, fmt.Errorf("decode marker: %w", err)
	}

	seconds, err := strconv.ParseFloat(m.LastModified, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse marker timestamp %q: %w", m.LastModified, err)
	}

	whole, frac := math.Modf(seconds)

	return time.Unix(int64(whole), int64(frac*float64(time.Second))), nil
}

func (rl *RateLimiter) mark(ctx context.Context, key string, now time.Time) error {
	seconds := float64(now.UnixNano()) / float64(time.Second)

	body, err := json.Marshal(marker{LastModified: strconv.FormatFloat(seconds, 'f', 6, 64)})
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}

	return rl.store.Put(ctx, key, body)
}
