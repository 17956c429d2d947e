package network

import (
	"context"
	"strings"
	"time"
)

// DefaultSearchLimit caps search results when the caller passes no limit.
const DefaultSearchLimit = 20

// Searcher is implemented by sources that can look entities up by text.
type Searcher interface {
	// Search returns up to limit entities whose name or email contains
	// query, case-insensitively.
	Search(ctx context.Context, query string, limit int) ([]Entity, error)
}

// Matches reports whether the entity's name or email contains query,
// ignoring case. An empty query matches nothing.
func (e Entity) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(e.Name), q) ||
		strings.Contains(strings.ToLower(e.Email), q)
}

// SearchEntities filters entities in memory, preserving order.
func SearchEntities(entities []Entity, query string, limit int) []Entity {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	var out []Entity
	for _, e := range entities {
		if len(out) == limit {
			break
		}
		if e.Matches(query) {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarises the relationships of one window.
type Stats struct {
	Relationships int `json:"total_relationships"`
	Entities      int `json:"unique_people"`
}

// Summarize counts relationships and the distinct entities they touch.
func Summarize(rels []Relationship) Stats {
	seen := make(map[int64]struct{}, len(rels))
	for _, r := range rels {
		seen[r.SourceID] = struct{}{}
		seen[r.TargetID] = struct{}{}
	}
	return Stats{Relationships: len(rels), Entities: len(seen)}
}

// Span returns the earliest start and the latest end over rels. Open-ended
// relationships contribute their start to the maximum. ok is false when
// rels is empty.
func Span(rels []Relationship) (min, max time.Time, ok bool) {
	for i, r := range rels {
		end := r.Start
		if r.End != nil {
			end = *r.End
		}
		if i == 0 {
			min, max = r.Start, end
			continue
		}
		if r.Start.Before(min) {
			min = r.Start
		}
		if end.Before(min) {
			min = end
		}
		if end.After(max) {
			max = end
		}
		if r.Start.After(max) {
			max = r.Start
		}
	}
	return min, max, len(rels) > 0
}
