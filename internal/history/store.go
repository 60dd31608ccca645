// Package history records past design sessions.
package history

import (
	"context"
	"time"
)

// Entry is one past session summary.
type Entry struct {
	ProjectName string
	Actions     []string
	TotalCost   int64
	CreatedAt   time.Time
}

// Store appends and lists session summaries. List returns oldest first.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context) ([]Entry, error)
}

// NewEntry builds the entry recorded after a single action.
func NewEntry(action string, cost int64, now time.Time) Entry {
	return Entry{
		ProjectName: "Design " + now.Format("15:04:05"),
		Actions:     []string{action},
		TotalCost:   cost,
		CreatedAt:   now,
	}
}

// Newest returns entries newest first without modifying the input.
func Newest(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}
