package summarizer

import (
	"context"
	"fmt"

	"pathsummarizer/internal/domain"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the raw alert text exactly as received.
	Text string
	// Model selects the upstream model for this call.
	Model string
}

// Summarizer produces a structured summary for alert text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (domain.AlertSummary, error)
}

// ValidationError reports model output that does not fit AlertSummary.
type ValidationError struct {
	Model string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid model output (model = %s): %v", e.Model, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
