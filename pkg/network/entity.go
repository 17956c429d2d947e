package network

import "strings"

// Sentinel values used when optional fields are absent.
const (
	FactionNone   = "none"
	DomainUnknown = "unknown"
	NameUnknown   = "Unknown"
)

// Risk levels, ordered from least to most severe.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

var riskAliases = map[string]string{
	"baixo":   RiskLow,
	"medio":   RiskMedium,
	"médio":   RiskMedium,
	"alto":    RiskHigh,
	"critico": RiskCritical,
	"crítico": RiskCritical,
}

// Entity is a node of the network: a person or record.
type Entity struct {
	ID         int64             `json:"id" bson:"id"`
	Name       string            `json:"name" bson:"name"`
	Email      string            `json:"email,omitempty" bson:"email,omitempty"`
	Faction    string            `json:"faction,omitempty" bson:"faction,omitempty"`
	RiskLevel  string            `json:"risk_level,omitempty" bson:"risk_level,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" bson:"attributes,omitempty"`
}

// FactionOrNone returns the faction, or [FactionNone] when unset.
func (e Entity) FactionOrNone() string {
	if e.Faction == "" {
		return FactionNone
	}
	return e.Faction
}

// Risk returns the normalised risk level. Unknown values are passed through
// lower-cased; an empty value is [RiskLow].
func (e Entity) Risk() string {
	r := strings.ToLower(strings.TrimSpace(e.RiskLevel))
	if r == "" {
		return RiskLow
	}
	if alias, ok := riskAliases[r]; ok {
		return alias
	}
	return r
}

// EmailDomain returns the part of the address after '@', or [DomainUnknown].
func (e Entity) EmailDomain() string {
	_, domain, ok := strings.Cut(e.Email, "@")
	if !ok || domain == "" {
		return DomainUnknown
	}
	return strings.ToLower(domain)
}

// DisplayName returns the name, or [NameUnknown] when empty.
func (e Entity) DisplayName() string {
	if e.Name == "" {
		return NameUnknown
	}
	return e.Name
}
