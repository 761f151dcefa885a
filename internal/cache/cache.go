// Package cache is a best-effort read-through layer over an object store.
// Store faults never leave this package: a failed read is a miss and a
// failed write means the result is simply not cached.
package cache

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pathsummarizer/internal/objectstore"
)

const tracerName = "pathsummarizer/internal/cache"

type ObjectCache struct {
	store objectstore.Store
	log   *slog.Logger
}

func New(store objectstore.Store, log *slog.Logger) *ObjectCache {
	return &ObjectCache{store: store, log: log}
}

// Get returns the payload stored under key and whether it was found.
func (c *ObjectCache) Get(ctx context.Context, key string) ([]byte, bool) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "cache.Get")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	data, err := c.store.Get(ctx, key)
	if errors.Is(err, objectstore.ErrNotFound) {
		c.log.InfoContext(ctx, "No cached object found",
			"key", key)
		span.SetAttributes(attribute.Bool("cache.hit", false))

		return nil, false
	}
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to read cached object",
			"error", err,
			"key", key)
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache read fault")
		span.SetAttributes(attribute.Bool("cache.hit", false))

		return nil, false
	}

	c.log.InfoContext(ctx, "Cached object is retrieved",
		"key", key,
		"bytes", len(data))
	span.SetAttributes(attribute.Bool("cache.hit", true))

	return data, true
}

// Put stores value under key. Failures are logged and swallowed.
func (c *ObjectCache) Put(ctx context.Context, key string, value []byte) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "cache.Put")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	if err := c.store.Put(ctx, key, value); err != nil {
		c.log.ErrorContext(ctx, "Failed to write cached object",
			"error", err,
			"key", key,
			"bytes", len(value))
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache write fault")

		return
	}

	c.log.InfoContext(ctx, "Object is cached",
		"key", key,
		"bytes", len(value))
}
