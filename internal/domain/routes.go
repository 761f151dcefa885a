package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// Route is a PATH service pattern. Routes serialise by their short name
// (e.g. JSQ_33) and parse from either the name or the long description.
type Route int

const (
	RouteNewarkWTC Route = iota + 1
	RouteJournalSquareWTC
	RouteHobokenWTC
	RouteJournalSquare33
	RouteHoboken33
	RouteJournalSquare33ViaHoboken
)

type routeInfo struct {
	name        string
	description string
}

var routeInfos = map[Route]routeInfo{
	RouteNewarkWTC: {
		name:        "NWK_WTC",
		description: "Newark - World Trade Center, stations along this route are Newark, Harrison, Journal Square, Grove Street, Exchange Place, World Trade Center",
	},
	RouteJournalSquareWTC: {
		name:        "JSQ_WTC",
		description: "Journal Square - World Trade Center, stations along this route are Journal Square, Grove Street, Exchange Place, World Trade Center",
	},
	RouteHobokenWTC: {
		name:        "HOB_WTC",
		description: "Hoboken - World Trade Center, stations along this route are Hoboken, Newport, Exchange Place, World Trade Center",
	},
	RouteJournalSquare33: {
		name:        "JSQ_33",
		description: "Journal Square - 33rd Street, stations along this route are Journal Square, Grove Street, Newport, Christopher Street, 9th Street, 14th Street, 23rd Street, 33rd Street",
	},
	RouteHoboken33: {
		name:        "HOB_33",
		description: "Hoboken - 33rd Street, stations along this route are Hoboken, Christopher Street, 9th Street, 14th Street, 23rd Street, 33rd Street",
	},
	RouteJournalSquare33ViaHoboken: {
		name:        "JSQ_33_HOB",
		description: "Journal Square - 33rd Street (via Hoboken), stations along this route are Journal Square, Grove Street, Newport, Hoboken, Christopher Street, 9th Street, 14th Street, 23rd Street, 33rd Street",
	},
}

func Routes() []Route {
	return []Route{
		RouteNewarkWTC,
		RouteJournalSquareWTC,
		RouteHobokenWTC,
		RouteJournalSquare33,
		RouteHoboken33,
		RouteJournalSquare33ViaHoboken,
	}
}

func (r Route) String() string {
	if info, ok := routeInfos[r]; ok {
		return info.name
	}

	return fmt.Sprintf("Route(%d)", int(r))
}

// Description returns the long form given to the model.
func (r Route) Description() string {
	return routeInfos[r].description
}

// ParseRoute matches the short name case-insensitively first, then the
// long description.
func ParseRoute(raw string) (Route, error) {
	trimmed := strings.TrimSpace(raw)
	for _, r := range Routes() {
		if strings.EqualFold(routeInfos[r].name, trimmed) {
			return r, nil
		}
	}

	for _, r := range Routes() {
		if strings.EqualFold(routeInfos[r].description, trimmed) {
			return r, nil
		}
	}

	names := make([]string, 0, len(routeInfos))
	for _, r := range Routes() {
		names = append(names, routeInfos[r].name)
	}

	return 0, fmt.Errorf("invalid route %q (valid routes = %s)", raw, strings.Join(names, ", "))
}

func (r Route) MarshalJSON() ([]byte, error) {
	info, ok := routeInfos[r]
	if !ok {
		return nil, fmt.Errorf("marshal route: invalid value %d", int(r))
	}

	return json.Marshal(info.name)
}

func (r *Route) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("route must be a string: %w", err)
	}

	parsed, err := ParseRoute(raw)
	if err != nil {
		return err
	}
	*r = parsed

	return nil
}

// JSONSchema offers the model the long descriptions so it knows which
// stations each route serves; ParseRoute maps them back.
func (Route) JSONSchema() *jsonschema.Schema {
	enum := make([]any, 0, len(routeInfos))
	for _, r := range Routes() {
		enum = append(enum, routeInfos[r].description)
	}

	return &jsonschema.Schema{Type: "string", Enum: enum}
}
