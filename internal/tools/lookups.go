package tools

import (
	"context"

	"github.com/threatsentry/threatsentry/internal/score"
)

// IPIntelligence retrieves the communicating-sample report for an IP and
// returns it as a normalized JSON record.
type IPIntelligence struct {
	Reporter IPReporter
}

func (IPIntelligence) Name() string { return "IP_Intelligence" }

func (IPIntelligence) Description() string {
	return "Retrieve threat intelligence for an IP address: hashes of malware " +
		"samples observed communicating with it, split into detected and undetected lists. " +
		"Input is a single IPv4 address."
}

func (t IPIntelligence) Call(ctx context.Context, input string) (string, error) {
	rec, err := t.Reporter.IPReport(ctx, trimInput(input))
	if err != nil {
		return errJSON(err), nil
	}
	return asJSON(rec), nil
}

// Geolocation resolves an IP to city, region, country, coordinates, and
// owning organization.
type Geolocation struct {
	Lookuper GeoLookuper
}

func (Geolocation) Name() string { return "Geolocation" }

func (Geolocation) Description() string {
	return "Perform geolocation lookup for an IP address, providing city, region, " +
		"country, coordinates, and organization details. Input is a single IPv4 address."
}

func (t Geolocation) Call(ctx context.Context, input string) (string, error) {
	rec, err := t.Lookuper.Lookup(ctx, trimInput(input))
	if err != nil {
		return errJSON(err), nil
	}
	return asJSON(rec), nil
}

// MalwareAnalysis looks up a file hash: detection ratio, first/last seen,
// file type, reputation.
type MalwareAnalysis struct {
	Reporter FileReporter
}

func (MalwareAnalysis) Name() string { return "Malware_Analysis" }

func (MalwareAnalysis) Description() string {
	return "Analyze a file hash for malware characteristics: detection rate, " +
		"first and last submission dates, file type, and reputation. " +
		"Input is a single MD5, SHA-1, or SHA-256 hash."
}

func (t MalwareAnalysis) Call(ctx context.Context, input string) (string, error) {
	rec, err := t.Reporter.FileReport(ctx, trimInput(input))
	if err != nil {
		return errJSON(err), nil
	}
	return asJSON(rec), nil
}

// ThreatScoreAssessment fetches IP reputation and geolocation for an IP
// and aggregates them into a bounded threat score with a risk tier.
type ThreatScoreAssessment struct {
	IP  IPReporter
	Geo GeoLookuper
}

func (ThreatScoreAssessment) Name() string { return "Threat_Score_Assessment" }

func (ThreatScoreAssessment) Description() string {
	return "Calculate a comprehensive threat score for an IP address based on " +
		"multiple intelligence sources: malicious-sample count, geographic risk, " +
		"and hosting organization. Returns the score, a Low/Medium/High risk level, " +
		"and the contributing records. Input is a single IPv4 address."
}

func (t ThreatScoreAssessment) Call(ctx context.Context, input string) (string, error) {
	ip := trimInput(input)

	intelRec, err := t.IP.IPReport(ctx, ip)
	if err != nil {
		return errJSON(err), nil
	}
	geoRec, err := t.Geo.Lookup(ctx, ip)
	if err != nil {
		return errJSON(err), nil
	}
	return asJSON(score.Calculate(intelRec, geoRec)), nil
}

// RetrieveIPInfo returns the detected communicating-sample hashes for an
// IP as a bare JSON array, the raw shape other consumers feed into
// score.CalculateRaw.
type RetrieveIPInfo struct {
	Reporter IPReporter
}

func (RetrieveIPInfo) Name() string { return "Retrieve_IP_Info" }

func (RetrieveIPInfo) Description() string {
	return "Retrieve the raw list of detected communicating sample hashes for an " +
		"IP address from VirusTotal as a JSON array. Input is a single IPv4 address."
}

func (t RetrieveIPInfo) Call(ctx context.Context, input string) (string, error) {
	rec, err := t.Reporter.IPReport(ctx, trimInput(input))
	if err != nil {
		return errJSON(err), nil
	}
	samples := rec.DetectedSamples
	if samples == nil {
		samples = []string{}
	}
	return asJSON(samples), nil
}
