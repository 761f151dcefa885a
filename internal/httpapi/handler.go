// Package httpapi exposes the alert summarizer over HTTP and API Gateway
// proxy events. Both surfaces share one request path so they answer with
// identical status codes and bodies.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gorilla/mux"

	"pathsummarizer/internal/alerts"
	"pathsummarizer/internal/domain"
)

const (
	inputParam     = "input"
	skipCacheParam = "skip_cache"

	cacheControl = "max-age=86400"

	msgMissingInput = "Missing input parameter"
	msgUpstream     = "Failed to summarize alert, please try again later"
)

// Summarizer is the part of alerts.Service the handler depends on.
type Summarizer interface {
	Summarize(ctx context.Context, text string, skipCache bool) (*domain.CachedRecord, error)
}

type Handler struct {
	alerts    Summarizer
	magicWord string
	log       *slog.Logger
}

// NewHandler builds a handler. skip_cache is only honoured when it equals
// magicWord; an empty magicWord disables cache skipping entirely.
func NewHandler(s Summarizer, magicWord string, log *slog.Logger) *Handler {
	return &Handler{alerts: s, magicWord: magicWord, log: log}
}

// SetupRoutes registers the API on router.
func SetupRoutes(router *mux.Router, h *Handler) {
	router.HandleFunc("/summarize", h.Summarize).Methods(http.MethodGet)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
}

// NewRouter returns a router with every route registered.
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	SetupRoutes(router, h)

	return router
}

// Summarize handles GET /summarize?input=...&skip_cache=...
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	status, body := h.summarize(r.Context(), r.URL.Query())
	if status == http.StatusOK {
		w.Header().Set("Cache-Control", cacheControl)
	}

	respondJSON(w, status, body)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleAPIGateway serves the same endpoint for an API Gateway proxy
// integration.
func (h *Handler) HandleAPIGateway(
	ctx context.Context,
	req events.APIGatewayProxyRequest,
) (events.APIGatewayProxyResponse, error) {
	query := make(url.Values, len(req.QueryStringParameters))
	for k, v := range req.MultiValueQueryStringParameters {
		query[k] = v
	}
	for k, v := range req.QueryStringParameters {
		if !query.Has(k) {
			query.Set(k, v)
		}
	}

	status, body := h.summarize(ctx, query)

	data, err := json.Marshal(body)
	if err != nil {
		h.log.ErrorContext(ctx, "Failed to encode response",
			"error", err)

		return events.APIGatewayProxyResponse{}, err
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if status == http.StatusOK {
		headers["Cache-Control"] = cacheControl
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(data),
	}, nil
}

func (h *Handler) summarize(ctx context.Context, query url.Values) (int, any) {
	if !query.Has(inputParam) {
		h.log.WarnContext(ctx, "Missing input parameter in request")

		return http.StatusBadRequest, errorBody(msgMissingInput)
	}

	input := query.Get(inputParam)
	skipCache := h.magicWord != "" && query.Get(skipCacheParam) == h.magicWord

	h.log.InfoContext(ctx, "Processing summarize request",
		"inputLength", len(input),
		"skipCache", skipCache)

	record, err := h.alerts.Summarize(ctx, input, skipCache)
	if errors.Is(err, alerts.ErrRateLimited) {
		return http.StatusTooManyRequests, errorBody(err.Error())
	}
	if err != nil {
		h.log.ErrorContext(ctx, "Failed to process summarize request",
			"error", err)

		return http.StatusInternalServerError, errorBody(msgUpstream)
	}

	return http.StatusOK, record
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
