package prewarm

import (
	"regexp"
	"strings"
)

var (
	timePrefixRe = regexp.MustCompile(`(?i)^\d{1,2}[: ]\d{1,2} ?[ap]m[: ]?`)
	apologizeRe  = regexp.MustCompile(`We (apologize|regret) (for )?(the|this|any)?( )?(inconvenience)( )?(this )?(may )?(have|has)?( )?(caused)?(.*\.)`)

	updateInReplacer = strings.NewReplacer(
		"An update will be issued in approx.", "Update in",
		"An update will be issued in approx", "Update in",
		"An update will be issued w/in approx", "Update in",
		"Next update will be issued w/in approx", "Update in",
		"Next update w/in", "Update in",
	)

	// Applied in order; "Update:" must come after the longer labels.
	boilerplate = []string{
		"PATHAlert:",
		"PATHAlert Update:",
		"PATHAlert Final Update:",
		"Final Update:",
		"Update:",
		"Real-Time Train Departures on: - RidePATH app: - PATH website:",
	}
)

const doubleSpacePasses = 5

// CleanAlertText normalises alert text exactly as the rider app does
// before asking for a summary, so prewarmed keys match app requests.
func CleanAlertText(raw string) string {
	s := strings.TrimSpace(raw)
	s = removeDoubleSpaces(s)

	if loc := timePrefixRe.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
	}

	s = updateInReplacer.Replace(s)
	s = strings.ReplaceAll(s, "mins.", "  mins.")
	s = apologizeRe.ReplaceAllString(s, "")

	for _, b := range boilerplate {
		s = strings.ReplaceAll(s, b, "")
	}

	s = removeDoubleSpaces(s)
	s = strings.ReplaceAll(s, "..", ".")
	s = strings.ReplaceAll(s, "..", ".")
	s = strings.TrimSpace(s)

	s = removeURLSentences(s)

	return addPeriod(s)
}

// removeDoubleSpaces deletes "  " a fixed number of times, so long runs
// of spaces are not fully collapsed.
func removeDoubleSpaces(s string) string {
	for range doubleSpacePasses {
		s = strings.ReplaceAll(s, "  ", "")
	}

	return s
}

func removeURLSentences(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ". ")
	kept := parts[:0]
	for _, p := range parts {
		if !strings.Contains(p, "http") {
			kept = append(kept, p)
		}
	}

	return strings.TrimSpace(strings.Join(kept, ". "))
}

func addPeriod(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}

	return s + "."
}

func isSurvey(raw string) bool {
	return strings.Contains(strings.ToLower(raw), "satisfaction survey")
}
