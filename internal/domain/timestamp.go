package domain

import (
	"encoding/json"
	"fmt"
	"time"
	_ "time/tzdata" // Location data for images without a zoneinfo database.

	"github.com/invopop/jsonschema"
)

// localLayout is the offset-less form models use for local transit times.
const localLayout = "2006-01-02T15:04:05"

// ServiceLocation is the zone PATH publishes its schedules in. Timestamps
// without an offset are read in it.
var ServiceLocation = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("load location %q: %v", name, err))
	}

	return loc
}

// Timestamp is a point in time that decodes from RFC 3339 or from a local
// date-time with no offset. It always encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		t.Time = parsed
		return nil
	}

	parsed, localErr := time.ParseInLocation(localLayout, raw, ServiceLocation)
	if localErr != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	t.Time = parsed

	return nil
}

func (Timestamp) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Format: "date-time"}
}
