// Package intel provides stateless HTTP lookups against external
// threat-intelligence vendors (IP reputation, geolocation, malware hash)
// and the normalized record types they produce.
//
// Every lookup is a single request/response exchange with a fixed timeout.
// There is no caching, retry, or rate limiting; transport and vendor
// failures are returned as a structured *Error value, never panicked.
package intel

import "fmt"

// Unknown is the default for any vendor field absent from a payload.
const Unknown = "Unknown"

// ErrorKind classifies a lookup failure.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport" // connection, timeout, DNS
	KindStatus    ErrorKind = "status"    // non-2xx vendor response
	KindDecode    ErrorKind = "decode"    // malformed vendor JSON
	KindNotFound  ErrorKind = "not_found" // vendor has no record for the IOC
)

// Error is the structured failure value returned by every lookup.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`

	// status is the HTTP status code for KindStatus errors, 0 otherwise.
	status int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func errorf(kind ErrorKind, format string, a ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, a...)}
}

// IntelRecord is the normalized IP-reputation result: hashes of samples
// observed communicating with the IP. Sample order is vendor-supplied.
type IntelRecord struct {
	IP                string   `json:"ip"`
	DetectedSamples   []string `json:"detected_samples"`
	UndetectedSamples []string `json:"undetected_samples"`
}

// GeoRecord is the normalized geolocation result. Absent vendor fields
// default to Unknown.
type GeoRecord struct {
	IP           string `json:"ip"`
	City         string `json:"city"`
	Region       string `json:"region"`
	Country      string `json:"country"`
	Location     string `json:"location"`
	Organization string `json:"organization"`
}

// MalwareRecord is the normalized file-hash lookup result.
type MalwareRecord struct {
	Hash          string `json:"hash"`
	DetectionRate string `json:"detection_rate"`
	FirstSeen     string `json:"first_seen"`
	LastSeen      string `json:"last_seen"`
	FileType      string `json:"file_type"`
	Reputation    int    `json:"reputation"`
}

// orUnknown substitutes the Unknown default for an empty vendor field.
func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
