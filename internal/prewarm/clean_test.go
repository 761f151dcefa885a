package prewarm

import "testing"

func TestCleanAlertText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "time prefix, label, update and apology",
			raw: "10:15 am: PATHAlert: JSQ-33 delayed due to signal problems. " +
				"An update will be issued in approx. 15 mins. We apologize for the inconvenience this may have caused.",
			want: "JSQ-33 delayed due to signal problems. Update in 15 mins.",
		},
		{
			name: "spaced time prefix",
			raw:  "9 30 PM HOB-33 delayed",
			want: "HOB-33 delayed.",
		},
		{
			name: "final update label and doubled periods",
			raw:  "PATHAlert Final Update: NWK-WTC service has resumed..",
			want: "NWK-WTC service has resumed.",
		},
		{
			name: "departures footer and link sentence",
			raw: "Real-Time Train Departures on: - RidePATH app: - PATH website: " +
				"Visit http://www.panynj.gov/path for info. Elevator out at Harrison",
			want: "Elevator out at Harrison.",
		},
		{
			name: "already clean",
			raw:  "Service suspended 07-13-2024 2am-8am",
			want: "Service suspended 07-13-2024 2am-8am.",
		},
		{
			name: "empty",
			raw:  "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanAlertText(tt.raw); got != tt.want {
				t.Fatalf("CleanAlertText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrepareDeduplicatesAndDropsSurveys(t *testing.T) {
	raw := []string{
		"10:15 am: PATHAlert: JSQ-33 delayed.",
		"Take our customer Satisfaction Survey at http://example.test",
		"10:30 am: PATHAlert Update: JSQ-33 delayed.",
		"",
		"Elevator out at Harrison",
	}

	got := Prepare(raw)
	want := []string{"JSQ-33 delayed.", "Elevator out at Harrison."}

	if len(got) != len(want) {
		t.Fatalf("Prepare() = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Prepare()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
