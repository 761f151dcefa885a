package prewarm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"pathsummarizer/internal/alerts"
	"pathsummarizer/internal/domain"
)

type staticSource struct {
	alerts []string
	err    error
}

func (s staticSource) Alerts(context.Context) ([]string, error) {
	return s.alerts, s.err
}

type stubAlerts struct {
	mu      sync.Mutex
	texts   []string
	results map[string]error
	cached  map[string]bool
}

func (s *stubAlerts) Summarize(_ context.Context, text string, skipCache bool) (*domain.CachedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if skipCache {
		panic("prewarm must go through the cache")
	}

	s.texts = append(s.texts, text)
	if err := s.results[text]; err != nil {
		return nil, err
	}

	return &domain.CachedRecord{Input: text, Cached: s.cached[text]}, nil
}

func TestPrewarmerRun(t *testing.T) {
	upstreamErr := &alerts.UpstreamError{Model: "m", Err: errors.New("boom")}
	stub := &stubAlerts{
		results: map[string]error{
			"Broken alert.":  upstreamErr,
			"Limited alert.": alerts.ErrRateLimited,
		},
		cached: map[string]bool{"Cached alert.": true},
	}
	src := staticSource{alerts: []string{
		"PATHAlert: Fresh alert",
		"Cached alert",
		"Broken alert",
		"Limited alert",
		"PATHAlert Update: Fresh alert",
	}}

	p := New(src, stub, 2, slog.New(slog.DiscardHandler))

	result, err := p.Run(context.Background())
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected joined upstream error, got %v", err)
	}

	want := Result{Alerts: 4, Cached: 1, Summarized: 1, RateLimited: 1, Failed: 1}
	if result != want {
		t.Fatalf("unexpected result: %+v, want %+v", result, want)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.texts) != 4 {
		t.Fatalf("expected each distinct alert summarized once, got %q", stub.texts)
	}
}

func TestPrewarmerRunSourceFailure(t *testing.T) {
	sourceErr := errors.New("board unavailable")
	p := New(staticSource{err: sourceErr}, &stubAlerts{}, 0, slog.New(slog.DiscardHandler))

	if _, err := p.Run(context.Background()); !errors.Is(err, sourceErr) {
		t.Fatalf("expected source error, got %v", err)
	}
}
