package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Station is a PATH station. The zero value is not a valid station.
type Station int

const (
	StationNewark Station = iota + 1
	StationHarrison
	StationJournalSquare
	StationGroveStreet
	StationExchangePlace
	StationWorldTradeCenter
	StationHoboken
	StationNewport
	StationChristopherStreet
	StationNinthStreet
	StationFourteenthStreet
	StationTwentyThirdStreet
	StationThirtyThirdStreet
)

var stationNames = map[Station]string{
	StationNewark:            "Newark Penn Station",
	StationHarrison:          "Harrison",
	StationJournalSquare:     "Journal Square",
	StationGroveStreet:       "Grove Street",
	StationExchangePlace:     "Exchange Place",
	StationWorldTradeCenter:  "World Trade Center",
	StationHoboken:           "Hoboken",
	StationNewport:           "Newport",
	StationChristopherStreet: "Christopher Street",
	StationNinthStreet:       "9th Street",
	StationFourteenthStreet:  "14th Street",
	StationTwentyThirdStreet: "23rd Street",
	StationThirtyThirdStreet: "33rd Street",
}

// Stations lists every station in line order.
func Stations() []Station {
	return []Station{
		StationNewark,
		StationHarrison,
		StationJournalSquare,
		StationGroveStreet,
		StationExchangePlace,
		StationWorldTradeCenter,
		StationHoboken,
		StationNewport,
		StationChristopherStreet,
		StationNinthStreet,
		StationFourteenthStreet,
		StationTwentyThirdStreet,
		StationThirtyThirdStreet,
	}
}

func (s Station) String() string {
	if name, ok := stationNames[s]; ok {
		return name
	}

	return fmt.Sprintf("Station(%d)", int(s))
}

// ParseStation matches a display name case-insensitively.
func ParseStation(raw string) (Station, error) {
	trimmed := strings.TrimSpace(raw)
	for _, s := range Stations() {
		if strings.EqualFold(stationNames[s], trimmed) {
			return s, nil
		}
	}

	return 0, fmt.Errorf("unknown station %q", raw)
}

func (s Station) MarshalJSON() ([]byte, error) {
	name, ok := stationNames[s]
	if !ok {
		return nil, fmt.Errorf("marshal station: invalid value %d", int(s))
	}

	return json.Marshal(name)
}

func (s *Station) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("station must be a string: %w", err)
	}

	parsed, err := ParseStation(raw)
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}

func (Station) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(stationNames))
	for _, s := range Stations() {
		enum = append(enum, stationNames[s])
	}

	return &jsonschema.Schema{Type: "string", Enum: enum}
}
