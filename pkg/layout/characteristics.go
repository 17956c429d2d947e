package layout

import (
	"slices"

	"github.com/matzehuels/orbitgraph/pkg/network"
)

// Degree buckets.
const (
	BucketLow    = "low"
	BucketMedium = "medium"
	BucketHigh   = "high"
)

// Characteristics are the derived features of one entity.
type Characteristics struct {
	DominantType string  `json:"dominant_type"`
	AvgStrength  float64 `json:"avg_strength"`
	Degree       int     `json:"degree"`
	Bucket       string  `json:"bucket"`
	Faction      string  `json:"faction"`
	Risk         string  `json:"risk"`
	EmailDomain  string  `json:"email_domain"`
}

// BucketOf maps a degree onto its bucket: below 3 is low, below 7 medium.
func BucketOf(degree int) string {
	switch {
	case degree < 3:
		return BucketLow
	case degree < 7:
		return BucketMedium
	default:
		return BucketHigh
	}
}

type tally struct {
	degree   int
	strength float64
	counts   map[string]int
	extra    []string // types outside the enumeration, first-seen order
}

func (t *tally) add(r network.Relationship) {
	t.degree++
	t.strength += r.StrengthOr(network.DefaultStrength)
	typ := r.TypeOrUnknown()
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	if _, seen := t.counts[typ]; !seen && !slices.Contains(network.Types, typ) {
		t.extra = append(t.extra, typ)
	}
	t.counts[typ]++
}

func (t *tally) dominant() string {
	best, max := network.TypeUnknown, 0
	for _, typ := range network.Types {
		if n := t.counts[typ]; n > max {
			best, max = typ, n
		}
	}
	for _, typ := range t.extra {
		if n := t.counts[typ]; n > max {
			best, max = typ, n
		}
	}
	return best
}

// Extract derives characteristics for every entity from the relationships
// that touch it. A self-loop counts once. Relationships with an endpoint
// outside entities are dropped, as [Connected] would drop them.
func Extract(entities []network.Entity, rels []network.Relationship) map[int64]Characteristics {
	tallies := make(map[int64]*tally, len(entities))
	for _, e := range entities {
		if _, ok := tallies[e.ID]; !ok {
			tallies[e.ID] = &tally{}
		}
	}
	for _, r := range rels {
		src, ok1 := tallies[r.SourceID]
		dst, ok2 := tallies[r.TargetID]
		if !ok1 || !ok2 {
			continue
		}
		src.add(r)
		if r.TargetID != r.SourceID {
			dst.add(r)
		}
	}

	out := make(map[int64]Characteristics, len(tallies))
	for _, e := range entities {
		if _, done := out[e.ID]; done {
			continue
		}
		t := tallies[e.ID]
		c := Characteristics{
			DominantType: t.dominant(),
			Degree:       t.degree,
			Bucket:       BucketOf(t.degree),
			Faction:      e.FactionOrNone(),
			Risk:         e.Risk(),
			EmailDomain:  e.EmailDomain(),
		}
		if t.degree > 0 {
			c.AvgStrength = t.strength / float64(t.degree)
		}
		out[e.ID] = c
	}
	return out
}
