package network

import "time"

// Relationship types in tie-break order. The dominant type of an entity is
// the most frequent type among its incident relationships; equal counts are
// resolved in favour of the type listed first here.
const (
	TypeFamily            = "family"
	TypeCriminalPartner   = "criminal_partner"
	TypeSuspiciousContact = "suspicious_contact"
	TypeAcquaintance      = "acquaintance"
	TypeAssociate         = "associate"
	TypeLeadership        = "leadership"
	TypeSubordinate       = "subordinate"
	TypeRival             = "rival"
	TypeUnknown           = "unknown"
)

// Types is the fixed enumeration of relationship types.
var Types = []string{
	TypeFamily,
	TypeCriminalPartner,
	TypeSuspiciousContact,
	TypeAcquaintance,
	TypeAssociate,
	TypeLeadership,
	TypeSubordinate,
	TypeRival,
	TypeUnknown,
}

// Relationship classifications.
const (
	ClassIntraFaction = "intra_faction"
	ClassInterFaction = "inter_faction"
	ClassFactionCivil = "faction_civil"
	ClassCivil        = "civil"
	ClassNormal       = "normal"
)

// Classifications is the fixed enumeration of relationship classifications.
var Classifications = []string{
	ClassIntraFaction,
	ClassInterFaction,
	ClassFactionCivil,
	ClassCivil,
	ClassNormal,
}

// DefaultStrength is the strength assumed for relationships that carry none.
const DefaultStrength = 0.5

// Relationship is an undirected, typed, weighted connection between two
// entities, valid from Start until End (open-ended when End is nil).
type Relationship struct {
	ID             int64      `json:"id" bson:"id"`
	SourceID       int64      `json:"source_id" bson:"source_id"`
	TargetID       int64      `json:"target_id" bson:"target_id"`
	Strength       *float64   `json:"strength,omitempty" bson:"strength,omitempty"`
	Type           string     `json:"relationship_type,omitempty" bson:"relationship_type,omitempty"`
	Classification string     `json:"classification,omitempty" bson:"classification,omitempty"`
	Start          time.Time  `json:"start_time" bson:"start_time"`
	End            *time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`

	// Display names of both endpoints, resolved by the source.
	SourceName string `json:"source_name,omitempty" bson:"-"`
	TargetName string `json:"target_name,omitempty" bson:"-"`
}

// Strength returns a pointer to s, for building relationships in code.
func Strength(s float64) *float64 { return &s }

// StrengthOr returns the strength, or def when it is absent.
func (r Relationship) StrengthOr(def float64) float64 {
	if r.Strength == nil {
		return def
	}
	return *r.Strength
}

// TypeOrUnknown returns the relationship type, or [TypeUnknown] when empty.
func (r Relationship) TypeOrUnknown() string {
	if r.Type == "" {
		return TypeUnknown
	}
	return r.Type
}

// ClassOrNormal returns the classification, or [ClassNormal] when empty.
func (r Relationship) ClassOrNormal() string {
	if r.Classification == "" {
		return ClassNormal
	}
	return r.Classification
}

// Touches reports whether id is one of the relationship's endpoints.
func (r Relationship) Touches(id int64) bool {
	return r.SourceID == id || r.TargetID == id
}

// Other returns the endpoint opposite to id. For a self-loop it returns id.
func (r Relationship) Other(id int64) int64 {
	if r.SourceID == id {
		return r.TargetID
	}
	return r.SourceID
}

// ResolveNames returns a copy of rels with SourceName and TargetName filled
// from entities. Endpoints without a matching entity are named [NameUnknown].
func ResolveNames(entities []Entity, rels []Relationship) []Relationship {
	names := make(map[int64]string, len(entities))
	for _, e := range entities {
		names[e.ID] = e.DisplayName()
	}
	out := make([]Relationship, len(rels))
	for i, r := range rels {
		r.SourceName = nameOr(names, r.SourceID)
		r.TargetName = nameOr(names, r.TargetID)
		out[i] = r
	}
	return out
}

func nameOr(names map[int64]string, id int64) string {
	if n, ok := names[id]; ok {
		return n
	}
	return NameUnknown
}
