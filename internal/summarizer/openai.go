package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"pathsummarizer/internal/domain"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	schemaName        = "AlertSummary"
	schemaDescription = "Rider-facing summary and classification of a PATH alert"
)

// OpenAIConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	SystemMessage string
	// Referer and Title are sent as OpenRouter attribution headers.
	Referer string
	Title   string
}

// OpenAISummarizer asks an OpenAI-compatible chat completions API for a
// strict JSON-schema AlertSummary.
type OpenAISummarizer struct {
	client        openai.Client
	systemMessage string
	log           *slog.Logger
}

func NewOpenAISummarizer(cfg OpenAIConfig, log *slog.Logger) (*OpenAISummarizer, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	if strings.TrimSpace(cfg.SystemMessage) == "" {
		return nil, errors.New("system message is empty")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	return &OpenAISummarizer{
		client:        openai.NewClient(opts...),
		systemMessage: cfg.SystemMessage,
		log:           log,
	}, nil
}

// Summarize sends one request; retries are left to the caller.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (domain.AlertSummary, error) {
	model := strings.TrimSpace(input.Model)
	if model == "" {
		return domain.AlertSummary{}, errors.New("model is empty")
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.systemMessage),
			openai.UserMessage(input.Text),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        schemaName,
					Description: openai.String(schemaDescription),
					Schema:      AlertSummarySchema(),
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return domain.AlertSummary{}, fmt.Errorf("do request (model = %s): %w", model, err)
	}

	s.log.InfoContext(ctx, "Model response is received",
		"model", model,
		"responseModel", resp.Model,
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 {
		return domain.AlertSummary{}, &ValidationError{Model: model, Err: errors.New("response has no choices")}
	}

	return DecodeAlertSummary(model, resp.Choices[0].Message.Content)
}

// DecodeAlertSummary parses model output into an AlertSummary.
func DecodeAlertSummary(model string, outputText string) (domain.AlertSummary, error) {
	var out domain.AlertSummary
	if err := decodeModelJSON(outputText, &out); err != nil {
		return domain.AlertSummary{}, &ValidationError{Model: model, Err: err}
	}

	out.Text.Text = strings.TrimSpace(out.Text.Text)
	if out.Text.Text == "" {
		return domain.AlertSummary{}, &ValidationError{Model: model, Err: errors.New("summary text is empty")}
	}

	return out, nil
}

// decodeModelJSON unmarshals JSON from a model response, tolerating code
// fences or stray text around the object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return errors.New("output text is empty")
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in output (len = %d)", len(s))
	}

	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("unmarshal output: %w", err)
	}

	return nil
}
