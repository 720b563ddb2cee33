// Package history persists triaged alerts to an append-only log.
//
// The log is the sole persisted state of the system: one JSON object per
// line, each {"alert": <record>, "triage": <string>}. Entries are never
// mutated or deleted and there is no index, dedup, or compaction.
//
// Two implementations of the Store interface are provided:
//   - FileStore: durable JSONL file, for production use.
//   - MemoryStore: in-process, for testing.
package history

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/threatsentry/threatsentry/internal/alert"
)

// Entry is one persisted alert log record.
type Entry struct {
	Alert  alert.Record `json:"alert"`
	Triage string       `json:"triage"`
}

// Store is an append-only alert log.
type Store interface {
	// Append writes one entry to the end of the log.
	Append(ctx context.Context, e Entry) error

	// Recent returns up to n entries, newest first. Unreadable entries
	// (for example a torn final line under concurrent write) are skipped.
	Recent(ctx context.Context, n int) ([]Entry, error)
}

var entriesAppended = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sentry_history_entries_appended_total",
	Help: "Total alert log entries appended.",
})
