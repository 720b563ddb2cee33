// Package tools exposes the threat-intelligence lookups as named,
// described tools consumable by the agent-execution engine.
//
// Every tool implements the langchaingo tools.Tool interface. A tool
// call never returns a non-nil error to the engine: lookup failures are
// rendered as an {"error": "..."} JSON payload in the tool output so the
// model can observe and report them.
package tools

import (
	"context"
	"encoding/json"
	"strings"

	lctools "github.com/tmc/langchaingo/tools"

	"github.com/threatsentry/threatsentry/internal/intel"
)

// IPReporter resolves the communicating-sample report for an IP.
type IPReporter interface {
	IPReport(ctx context.Context, ip string) (intel.IntelRecord, *intel.Error)
}

// GeoLookuper resolves geolocation for an IP.
type GeoLookuper interface {
	Lookup(ctx context.Context, ip string) (intel.GeoRecord, *intel.Error)
}

// FileReporter resolves the malware report for a file hash.
type FileReporter interface {
	FileReport(ctx context.Context, hash string) (intel.MalwareRecord, *intel.Error)
}

// All returns the full tool set in registration order.
func All(geo GeoLookuper, ip IPReporter, files FileReporter) []lctools.Tool {
	return []lctools.Tool{
		IPIntelligence{Reporter: ip},
		Geolocation{Lookuper: geo},
		MalwareAnalysis{Reporter: files},
		ThreatScoreAssessment{IP: ip, Geo: geo},
		RetrieveIPInfo{Reporter: ip},
	}
}

// trimInput strips whitespace and quoting the model may wrap around a
// bare IP or hash argument.
func trimInput(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'`")
}

// errJSON renders a failure as tool output text.
func errJSON(err error) string {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(out)
}

// asJSON marshals a record as tool output text.
func asJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return errJSON(err)
	}
	return string(out)
}
