package score_test

import (
	"fmt"
	"testing"

	"github.com/threatsentry/threatsentry/internal/intel"
	"github.com/threatsentry/threatsentry/internal/score"
)

func samples(n int) []string {
	s := make([]string, n)
	for i := range s {
		s[i] = fmt.Sprintf("hash-%d", i)
	}
	return s
}

func TestCalculate_sampleContributionCappedAtTen(t *testing.T) {
	for _, n := range []int{0, 1, 5, 9, 10, 11, 12, 100} {
		got := score.Calculate(
			intel.IntelRecord{DetectedSamples: samples(n)},
			intel.GeoRecord{Country: "US", Organization: "Acme Corp"},
		)
		want := n
		if want > 10 {
			want = 10
		}
		if got.Score != want {
			t.Errorf("n=%d: score %d, want %d", n, got.Score, want)
		}
	}
}

func TestCalculate_countryBonus(t *testing.T) {
	for _, tc := range []struct {
		country string
		want    int
	}{
		{"RU", 5}, {"CN", 5}, {"IR", 5}, {"KP", 5},
		{"US", 0}, {"DE", 0}, {"ru", 0}, {"", 0}, {"Unknown", 0},
	} {
		got := score.Calculate(intel.IntelRecord{}, intel.GeoRecord{Country: tc.country})
		if got.Score != tc.want {
			t.Errorf("country %q: score %d, want %d", tc.country, got.Score, tc.want)
		}
	}
}

func TestCalculate_organizationBonus(t *testing.T) {
	for _, tc := range []struct {
		org  string
		want int
	}{
		{"Acme Hosting Provider Inc", 3},
		{"Big Cloud Provider LLC", 3},
		{"Hosting Provider", 3},
		{"Acme Corp", 0},
		{"hosting provider", 0}, // match is case-sensitive
		{"", 0},
	} {
		got := score.Calculate(intel.IntelRecord{}, intel.GeoRecord{Organization: tc.org})
		if got.Score != tc.want {
			t.Errorf("org %q: score %d, want %d", tc.org, got.Score, tc.want)
		}
	}
}

func TestCalculate_maximumScore(t *testing.T) {
	got := score.Calculate(
		intel.IntelRecord{DetectedSamples: samples(12)},
		intel.GeoRecord{Country: "RU", Organization: "Acme Hosting Provider Inc"},
	)
	if got.Score != 18 {
		t.Errorf("score: got %d, want 18", got.Score)
	}
	if got.RiskLevel != score.RiskHigh {
		t.Errorf("risk: got %q, want High", got.RiskLevel)
	}
}

func TestCalculate_cleanInputs(t *testing.T) {
	got := score.Calculate(
		intel.IntelRecord{DetectedSamples: nil},
		intel.GeoRecord{Country: "US", Organization: "Acme Corp"},
	)
	if got.Score != 0 {
		t.Errorf("score: got %d, want 0", got.Score)
	}
	if got.RiskLevel != score.RiskLow {
		t.Errorf("risk: got %q, want Low", got.RiskLevel)
	}
}

func TestLevel_thresholds(t *testing.T) {
	for _, tc := range []struct {
		score int
		want  score.RiskLevel
	}{
		{0, score.RiskLow}, {5, score.RiskLow},
		{6, score.RiskMedium}, {10, score.RiskMedium},
		{11, score.RiskHigh}, {18, score.RiskHigh},
	} {
		if got := score.Level(tc.score); got != tc.want {
			t.Errorf("Level(%d): got %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestLevel_monotone(t *testing.T) {
	rank := map[score.RiskLevel]int{score.RiskLow: 0, score.RiskMedium: 1, score.RiskHigh: 2}
	prev := score.Level(0)
	for s := 1; s <= 30; s++ {
		curr := score.Level(s)
		if rank[curr] < rank[prev] {
			t.Fatalf("risk level decreased from %q to %q at score %d", prev, curr, s)
		}
		prev = curr
	}
}

func TestCalculateRaw_matchesTyped(t *testing.T) {
	samplesJSON := []byte(`["a","b","c","d","e","f","g","h","i","j","k","l"]`)
	geoJSON := []byte(`{"city":"Moscow","region":"Moscow","country":"RU","location":"55.75,37.61","org":"Acme Hosting Provider Inc"}`)

	raw, err := score.CalculateRaw("77.246.107.91", samplesJSON, geoJSON)
	if err != nil {
		t.Fatalf("CalculateRaw: %v", err)
	}

	typed := score.Calculate(
		intel.IntelRecord{IP: "77.246.107.91", DetectedSamples: samples(12)},
		intel.GeoRecord{IP: "77.246.107.91", Country: "RU", Organization: "Acme Hosting Provider Inc"},
	)

	if raw.Score != typed.Score {
		t.Errorf("raw score %d != typed score %d", raw.Score, typed.Score)
	}
	if raw.RiskLevel != typed.RiskLevel {
		t.Errorf("raw risk %q != typed risk %q", raw.RiskLevel, typed.RiskLevel)
	}
}

func TestCalculateRaw_objectSamples(t *testing.T) {
	// v2 report entries are objects; only the count contributes.
	samplesJSON := []byte(`[{"sha256":"aaa"},{"sha256":"bbb"}]`)
	geoJSON := []byte(`{"country":"US","org":"Acme Corp"}`)

	got, err := score.CalculateRaw("1.2.3.4", samplesJSON, geoJSON)
	if err != nil {
		t.Fatalf("CalculateRaw: %v", err)
	}
	if got.Score != 2 {
		t.Errorf("score: got %d, want 2", got.Score)
	}
}

func TestCalculateRaw_malformedInput(t *testing.T) {
	if _, err := score.CalculateRaw("1.2.3.4", []byte(`not json`), []byte(`{}`)); err == nil {
		t.Error("expected error for malformed samples")
	}
	if _, err := score.CalculateRaw("1.2.3.4", []byte(`[]`), []byte(`not json`)); err == nil {
		t.Error("expected error for malformed geolocation")
	}
}
