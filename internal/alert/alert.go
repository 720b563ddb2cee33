// Package alert defines the inbound alert record.
//
// Alerts arrive as free-form JSON from the message bus. The known keys
// (id, type, severity, tags) are surfaced as struct fields; every other
// key is preserved verbatim so an alert survives a log round-trip intact.
package alert

import "encoding/json"

// Record is an inbound alert. All fields are optional.
type Record struct {
	ID       string
	Type     string
	Severity string
	Tags     []string

	// Extra holds any payload keys beyond the known ones, untouched.
	Extra map[string]json.RawMessage
}

// knownKeys are lifted into struct fields and kept out of Extra.
var knownKeys = map[string]bool{
	"id": true, "type": true, "severity": true, "tags": true,
}

// UnmarshalJSON decodes the known keys and retains the rest in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var known struct {
		ID       string   `json:"id"`
		Type     string   `json:"type"`
		Severity string   `json:"severity"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	r.ID = known.ID
	r.Type = known.Type
	r.Severity = known.Severity
	r.Tags = known.Tags

	r.Extra = nil
	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		if r.Extra == nil {
			r.Extra = map[string]json.RawMessage{}
		}
		r.Extra[k] = v
	}
	return nil
}

// MarshalJSON emits the known keys (when set) merged with Extra.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.ID != "" {
		out["id"] = r.ID
	}
	if r.Type != "" {
		out["type"] = r.Type
	}
	if r.Severity != "" {
		out["severity"] = r.Severity
	}
	if r.Tags != nil {
		out["tags"] = r.Tags
	}
	return json.Marshal(out)
}
