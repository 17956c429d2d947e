package network

import (
	"context"
	"fmt"
	"time"
)

// Source is the boundary to the temporal store that owns the network.
// Implementations must be safe for concurrent use.
type Source interface {
	// ListEntities returns every known entity.
	ListEntities(ctx context.Context) ([]Entity, error)

	// ListRelationships returns the relationships admitted by w, with both
	// endpoint names resolved.
	ListRelationships(ctx context.Context, w Window) ([]Relationship, error)
}

// Ranger is implemented by sources that can report the span of time their
// relationships cover.
type Ranger interface {
	// TimeRange returns the earliest start and latest end (or start, for
	// open-ended relationships). ok is false when the store is empty.
	TimeRange(ctx context.Context) (min, max time.Time, ok bool, err error)
}

// Window selects relationships by validity interval.
//
// With Start set the window is the closed interval [Start, End] and any
// overlapping relationship is admitted. Without Start the window is the single
// instant End ("as of End").
type Window struct {
	Start *time.Time `json:"start,omitempty"`
	End   time.Time  `json:"end"`
}

// AsOf returns a window admitting relationships valid at t.
func AsOf(t time.Time) Window { return Window{End: t} }

// Between returns a window admitting relationships overlapping [start, end].
func Between(start, end time.Time) Window { return Window{Start: &start, End: end} }

// Admits reports whether r falls inside the window.
func (w Window) Admits(r Relationship) bool {
	if r.Start.After(w.End) {
		return false
	}
	if r.End == nil {
		return true
	}
	lower := w.End
	if w.Start != nil {
		lower = *w.Start
	}
	return !r.End.Before(lower)
}

// Filter returns the relationships admitted by w, preserving order.
func (w Window) Filter(rels []Relationship) []Relationship {
	out := make([]Relationship, 0, len(rels))
	for _, r := range rels {
		if w.Admits(r) {
			out = append(out, r)
		}
	}
	return out
}

// NameOf returns the source's Name() when it has one.
func NameOf(src Source) string {
	if n, ok := src.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "source"
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 timestamps, naive timestamps (read as UTC) and
// bare dates.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
