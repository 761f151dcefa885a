package alerts

import (
	"errors"
	"fmt"
)

// ErrRateLimited is returned when the same alert text was sent to the
// model within the cooldown window.
var ErrRateLimited = errors.New("this alert was summarized moments ago, try again in a little bit")

// UpstreamError reports a failed primary model call. Nothing is cached
// when it is returned.
type UpstreamError struct {
	Model string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("summarize alert (model = %s): %v", e.Model, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
