// Package triage classifies inbound alerts into priority buckets from
// their declared severity string.
package triage

import (
	"fmt"
	"strings"

	"github.com/threatsentry/threatsentry/internal/alert"
)

// Level is a triage priority bucket.
type Level string

const (
	LevelUnknown      Level = "Unknown"
	LevelHigh         Level = "High"
	LevelMedium       Level = "Medium"
	LevelLow          Level = "Low"
	LevelUnclassified Level = "Unclassified"
)

// Verdict is the triage outcome. RawSeverity carries the lower-cased
// severity string for Unclassified verdicts.
type Verdict struct {
	Level       Level
	RawSeverity string
}

// String renders the verdict as persisted in the alert log.
func (v Verdict) String() string {
	switch v.Level {
	case LevelUnknown:
		return "Unknown severity"
	case LevelHigh:
		return "High Severity"
	case LevelMedium:
		return "Medium Severity"
	case LevelLow:
		return "Low Severity"
	default:
		return fmt.Sprintf("Unclassified - severity: %s", v.RawSeverity)
	}
}

// Triage maps an alert's severity to a priority bucket. It is total:
// every input yields exactly one verdict and no input panics. Buckets are
// checked High, then Medium, then Low; the first match wins.
func Triage(a alert.Record) Verdict {
	severity := strings.ToLower(a.Severity)
	if severity == "" {
		return Verdict{Level: LevelUnknown}
	}

	switch {
	case strings.Contains(severity, "critical"), severity == "high", severity == "sev-high":
		return Verdict{Level: LevelHigh}
	case strings.Contains(severity, "medium"), severity == "moderate", severity == "sev-med":
		return Verdict{Level: LevelMedium}
	case strings.Contains(severity, "low"), severity == "info", severity == "sev-low":
		return Verdict{Level: LevelLow}
	default:
		return Verdict{Level: LevelUnclassified, RawSeverity: severity}
	}
}
