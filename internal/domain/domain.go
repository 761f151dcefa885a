package domain

// Summary is the rewritten alert text together with the model's reasoning.
type Summary struct {
	ChainOfThought string `json:"chain_of_thought" jsonschema_description:"Step by step reasoning to get a summary of the alert"`
	Text           string `json:"text"`
}

// TimeRange bounds the period in which an alert is relevant.
type TimeRange struct {
	ChainOfThought string     `json:"chain_of_thought" jsonschema_description:"Step by step reasoning to get the correct time range"`
	StartTime      *Timestamp `json:"start_time"       jsonschema:"nullable" jsonschema_description:"The date and time when the alert begins being relevant, if applicable"`
	EndTime        *Timestamp `json:"end_time"         jsonschema:"nullable" jsonschema_description:"The date and time when the alert ends being relevant, if applicable"`
}

type AffectedStations struct {
	ChainOfThought   string    `json:"chain_of_thought"  jsonschema_description:"Step by step reasoning to get the stations that are going to be affected by this alert, i.e. riders at this station really care about this alert"`
	AffectedStations []Station `json:"affected_stations" jsonschema:"nullable"`
}

type AffectedRoutes struct {
	ChainOfThought string  `json:"chain_of_thought" jsonschema_description:"Step by step reasoning to get the routes that are going to be affected by this alert, i.e. riders on this line really care about this alert"`
	AffectedRoutes []Route `json:"affected_routes"  jsonschema:"nullable"`
}

// AlertSummary is the structured result the model is asked to produce.
type AlertSummary struct {
	Text             Summary           `json:"text"`
	IsDelay          bool              `json:"is_delay"          jsonschema_description:"indicating if the alert is about a delay on lines, true is yes, false if it is a general announcement"`
	IsRelevant       bool              `json:"is_relevant"       jsonschema_description:"indicating if the alert affects the rider's experience or not"`
	Duration         *TimeRange        `json:"duration"          jsonschema:"nullable" jsonschema_description:"The date and time that this alert begins and ends being applicable. Events at Red Bull Arena are usually 3 hours."`
	AffectedRoutes   *AffectedRoutes   `json:"affected_routes"   jsonschema:"nullable" jsonschema_description:"List of affected routes"`
	AffectedStations *AffectedStations `json:"affected_stations" jsonschema:"nullable" jsonschema_description:"List of affected stations"`
}

// CachedRecord is the persisted and returned shape of a summarization.
// Cached is false in the stored bytes and only flipped on the returned view.
type CachedRecord struct {
	Input        string       `json:"input"`
	Response     AlertSummary `json:"response"`
	Model        string       `json:"model"`
	CacheVersion string       `json:"cache_version"`
	Cached       bool         `json:"cached"`
}
