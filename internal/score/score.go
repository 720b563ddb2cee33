// Package score computes the aggregate threat score for an IP from its
// reputation and geolocation records. The calculation is pure: it performs
// no I/O and is deterministic over already-fetched inputs.
package score

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/threatsentry/threatsentry/internal/intel"
)

// RiskLevel is the discrete tier derived from the numeric score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Scoring constants. The sample contribution is capped at sampleCap, so
// the maximum possible score is sampleCap + countryBonus + orgBonus.
const (
	sampleCap    = 10
	countryBonus = 5
	orgBonus     = 3
)

// highRiskCountries are ISO alpha-2 codes that add countryBonus.
var highRiskCountries = []string{"RU", "CN", "IR", "KP"}

// suspiciousOrgs add orgBonus when they appear as a substring of the
// geolocation organization field.
var suspiciousOrgs = []string{"Hosting Provider", "Cloud Provider"}

// Details records the inputs that produced a score.
type Details struct {
	IPIntelligence intel.IntelRecord `json:"ip_intelligence"`
	Geolocation    intel.GeoRecord   `json:"geolocation"`
}

// ThreatScore is the aggregation result. It is derived, never persisted;
// RiskLevel is always Level(Score).
type ThreatScore struct {
	Score     int       `json:"threat_score"`
	RiskLevel RiskLevel `json:"risk_level"`
	Details   Details   `json:"details"`
}

// Calculate combines an IP-reputation record and a geolocation record
// into a bounded score and risk tier:
//
//	min(len(detected_samples), 10)
//	+5 if the country is high-risk
//	+3 if the organization names a hosting or cloud provider
//
// Missing country or organization values simply earn no bonus.
func Calculate(ip intel.IntelRecord, geo intel.GeoRecord) ThreatScore {
	s := len(ip.DetectedSamples)
	if s > sampleCap {
		s = sampleCap
	}

	for _, c := range highRiskCountries {
		if geo.Country == c {
			s += countryBonus
			break
		}
	}

	for _, org := range suspiciousOrgs {
		if strings.Contains(geo.Organization, org) {
			s += orgBonus
			break
		}
	}

	return ThreatScore{
		Score:     s,
		RiskLevel: Level(s),
		Details:   Details{IPIntelligence: ip, Geolocation: geo},
	}
}

// CalculateRaw is the raw-JSON entry shape: samplesJSON is a JSON array of
// detected sample hashes, geoJSON a geolocation object. Both decode into
// the typed records and flow through Calculate, so the two entry shapes
// cannot drift apart.
func CalculateRaw(ip string, samplesJSON, geoJSON []byte) (ThreatScore, error) {
	var samples []json.RawMessage
	if err := json.Unmarshal(samplesJSON, &samples); err != nil {
		return ThreatScore{}, fmt.Errorf("decode samples: %w", err)
	}

	var geo struct {
		City    string `json:"city"`
		Region  string `json:"region"`
		Country string `json:"country"`
		Loc     string `json:"location"`
		Org     string `json:"org"`
	}
	if err := json.Unmarshal(geoJSON, &geo); err != nil {
		return ThreatScore{}, fmt.Errorf("decode geolocation: %w", err)
	}

	hashes := make([]string, len(samples))
	for i, s := range samples {
		// Samples may be bare hash strings or objects; either way only the
		// count matters for scoring.
		_ = json.Unmarshal(s, &hashes[i])
	}

	return Calculate(
		intel.IntelRecord{IP: ip, DetectedSamples: hashes},
		intel.GeoRecord{
			IP:           ip,
			City:         geo.City,
			Region:       geo.Region,
			Country:      geo.Country,
			Location:     geo.Loc,
			Organization: geo.Org,
		},
	), nil
}

// Level maps a score to its risk tier: High above 10, Medium above 5,
// Low otherwise.
func Level(score int) RiskLevel {
	switch {
	case score > 10:
		return RiskHigh
	case score > 5:
		return RiskMedium
	default:
		return RiskLow
	}
}
