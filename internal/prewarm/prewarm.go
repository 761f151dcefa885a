// Package prewarm fills the summary cache with the alerts currently on
// the PATH board so rider requests are served without a model call.
package prewarm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"pathsummarizer/internal/alerts"
	"pathsummarizer/internal/domain"
)

const defaultConcurrency = 4

type Summarizer interface {
	Summarize(ctx context.Context, text string, skipCache bool) (*domain.CachedRecord, error)
}

// Result counts what one run did with each distinct alert.
type Result struct {
	Alerts      int
	Cached      int
	Summarized  int
	RateLimited int
	Failed      int
}

type Prewarmer struct {
	source      Source
	alerts      Summarizer
	concurrency int
	log         *slog.Logger
}

func New(source Source, s Summarizer, concurrency int, log *slog.Logger) *Prewarmer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	return &Prewarmer{source: source, alerts: s, concurrency: concurrency, log: log}
}

// Run fetches the active alerts and summarizes each one through the
// cache. Every alert is attempted; failures are joined into the error.
func (p *Prewarmer) Run(ctx context.Context) (Result, error) {
	raw, err := p.source.Alerts(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch alerts: %w", err)
	}

	texts := Prepare(raw)
	result := Result{Alerts: len(texts)}

	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)
	g.SetLimit(p.concurrency)

	for _, text := range texts {
		g.Go(func() error {
			record, summarizeErr := p.alerts.Summarize(ctx, text, false)

			mu.Lock()
			defer mu.Unlock()

			switch {
			case errors.Is(summarizeErr, alerts.ErrRateLimited):
				result.RateLimited++
			case summarizeErr != nil:
				result.Failed++
				errs = append(errs, fmt.Errorf("summarize alert: %w", summarizeErr))
			case record.Cached:
				result.Cached++
			default:
				result.Summarized++
			}

			return nil
		})
	}
	_ = g.Wait()

	p.log.InfoContext(ctx, "Prewarm run is finished",
		"alerts", result.Alerts,
		"cached", result.Cached,
		"summarized", result.Summarized,
		"rateLimited", result.RateLimited,
		"failed", result.Failed)

	return result, errors.Join(errs...)
}

// Prepare cleans raw alerts, drops surveys and empty results, and removes
// duplicates while keeping the first occurrence order.
func Prepare(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	texts := make([]string, 0, len(raw))

	for _, r := range raw {
		if isSurvey(r) {
			continue
		}

		text := CleanAlertText(r)
		if text == "" {
			continue
		}

		if _, ok := seen[text]; ok {
			continue
		}
		seen[text] = struct{}{}
		texts = append(texts, text)
	}

	return texts
}
