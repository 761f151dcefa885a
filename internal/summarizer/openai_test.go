package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"pathsummarizer/internal/domain"
)

const validOutput = `{
	"text": {"chain_of_thought": "service suspended overnight", "text": "No PATH service 2am-8am on 07-13-2024."},
	"is_delay": false,
	"is_relevant": true,
	"duration": null,
	"affected_routes": {"chain_of_thought": "all", "affected_routes": ["JSQ_33", "NWK_WTC"]},
	"affected_stations": null
}`

type fakeRouter struct {
	mu       sync.Mutex
	requests []map[string]any
	headers  []http.Header
	content  string
	status   int
}

func (f *fakeRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.headers = append(f.headers, r.Header.Clone())
	status := f.status
	content := f.content
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream down","type":"server_error"}}`))
		return
	}

	resp := map[string]any{
		"id":      "gen-1",
		"object":  "chat.completion",
		"created": 1720836000,
		"model":   req["model"],
		"choices": []any{
			map[string]any{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
		"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestSummarizer(t *testing.T, router *fakeRouter) *OpenAISummarizer {
	t.Helper()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	s, err := NewOpenAISummarizer(OpenAIConfig{
		APIKey:        "test-key",
		BaseURL:       srv.URL,
		SystemMessage: "summarize PATH alerts",
		Referer:       "https://example.test",
		Title:         "PathSummarizer",
	}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("new summarizer: %v", err)
	}

	return s
}

func TestOpenAISummarizerSummarize(t *testing.T) {
	router := &fakeRouter{content: validOutput}
	s := newTestSummarizer(t, router)

	got, err := s.Summarize(context.Background(), Input{
		Text:  "Service suspended 07-13-2024 2am-8am",
		Model: "openai/chatgpt-4o-latest",
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if got.Text.Text != "No PATH service 2am-8am on 07-13-2024." {
		t.Fatalf("unexpected summary text: %q", got.Text.Text)
	}
	if !got.IsRelevant || got.IsDelay {
		t.Fatalf("unexpected flags: relevant=%v delay=%v", got.IsRelevant, got.IsDelay)
	}
	if got.AffectedRoutes == nil || len(got.AffectedRoutes.AffectedRoutes) != 2 {
		t.Fatalf("unexpected routes: %+v", got.AffectedRoutes)
	}
	if got.AffectedRoutes.AffectedRoutes[0] != domain.RouteJournalSquare33 {
		t.Fatalf("unexpected first route: %v", got.AffectedRoutes.AffectedRoutes[0])
	}

	router.mu.Lock()
	defer router.mu.Unlock()

	if len(router.requests) != 1 {
		t.Fatalf("expected exactly one upstream request, got %d", len(router.requests))
	}

	req := router.requests[0]
	if req["model"] != "openai/chatgpt-4o-latest" {
		t.Fatalf("unexpected model: %v", req["model"])
	}

	messages, _ := req["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}

	format, _ := req["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("unexpected response format: %v", format)
	}
	jsonSchema, _ := format["json_schema"].(map[string]any)
	if jsonSchema["strict"] != true {
		t.Fatalf("expected strict schema, got %v", jsonSchema["strict"])
	}

	h := router.headers[0]
	if h.Get("Authorization") != "Bearer test-key" {
		t.Fatalf("unexpected authorization header: %q", h.Get("Authorization"))
	}
	if h.Get("HTTP-Referer") != "https://example.test" || h.Get("X-Title") != "PathSummarizer" {
		t.Fatalf("missing attribution headers: %v", h)
	}
}

func TestOpenAISummarizerRejectsInvalidOutput(t *testing.T) {
	router := &fakeRouter{content: `{"text": {"chain_of_thought": "x", "text": "  "}}`}
	s := newTestSummarizer(t, router)

	_, err := s.Summarize(context.Background(), Input{Text: "alert", Model: "m"})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Model != "m" {
		t.Fatalf("unexpected model on validation error: %q", verr.Model)
	}
}

func TestOpenAISummarizerDoesNotRetry(t *testing.T) {
	router := &fakeRouter{status: http.StatusInternalServerError}
	s := newTestSummarizer(t, router)

	_, err := s.Summarize(context.Background(), Input{Text: "alert", Model: "m"})
	if err == nil {
		t.Fatalf("expected upstream error")
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		t.Fatalf("transport failure must not be reported as validation error")
	}

	router.mu.Lock()
	defer router.mu.Unlock()
	if len(router.requests) != 1 {
		t.Fatalf("expected a single attempt, got %d", len(router.requests))
	}
}

func TestNewOpenAISummarizerRequiresKey(t *testing.T) {
	_, err := NewOpenAISummarizer(OpenAIConfig{SystemMessage: "x"}, slog.New(slog.DiscardHandler))
	if err == nil {
		t.Fatalf("expected error for empty API key")
	}
}

func TestDecodeAlertSummaryStripsFences(t *testing.T) {
	got, err := DecodeAlertSummary("m", "```json\n"+validOutput+"\n```")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.AffectedStations != nil {
		t.Fatalf("expected null stations, got %+v", got.AffectedStations)
	}
}

func TestDecodeAlertSummaryRejectsUnknownRoute(t *testing.T) {
	output := `{"text": {"chain_of_thought": "", "text": "x"}, "affected_routes": {"chain_of_thought": "", "affected_routes": ["PATH_TO_NOWHERE"]}}`

	if _, err := DecodeAlertSummary("m", output); err == nil {
		t.Fatalf("expected unknown route to fail validation")
	}
}

func TestDecodeAlertSummaryAcceptsLocalTimes(t *testing.T) {
	output := `{
	"text": {"chain_of_thought": "", "text": "No PATH service 2am-8am on 07-13-2024."},
	"is_delay": false,
	"is_relevant": true,
	"duration": {"chain_of_thought": "", "start_time": "2024-07-13T02:00:00", "end_time": "2024-07-13T08:00:00"},
	"affected_routes": null,
	"affected_stations": null
}`

	got, err := DecodeAlertSummary("m", output)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Duration == nil || got.Duration.StartTime == nil || got.Duration.EndTime == nil {
		t.Fatalf("expected both bounds, got %+v", got.Duration)
	}

	want := time.Date(2024, 7, 13, 2, 0, 0, 0, domain.ServiceLocation)
	if !got.Duration.StartTime.Equal(want) {
		t.Fatalf("start = %s, want %s", got.Duration.StartTime, want)
	}
	if got.Duration.EndTime.Sub(got.Duration.StartTime.Time) != 6*time.Hour {
		t.Fatalf("unexpected end time %s", got.Duration.EndTime)
	}
}
