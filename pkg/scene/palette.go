package scene

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// Shape is the geometry of a node.
type Shape int

const (
	ShapeSphere Shape = iota
	ShapeBox
	ShapeOctahedron
)

func (s Shape) String() string {
	switch s {
	case ShapeBox:
		return "box"
	case ShapeOctahedron:
		return "octahedron"
	default:
		return "sphere"
	}
}

// BoundingRadius is the radius of the sphere enclosing the shape at scale 1.
func (s Shape) BoundingRadius() float64 {
	switch s {
	case ShapeBox:
		return 1.2 * math.Sqrt(3) / 2
	case ShapeOctahedron:
		return 1.0
	default:
		return 0.8
	}
}

// ShapeOf maps a degree bucket to a shape.
func ShapeOf(bucket string) Shape {
	switch bucket {
	case layout.BucketMedium:
		return ShapeBox
	case layout.BucketHigh:
		return ShapeOctahedron
	default:
		return ShapeSphere
	}
}

// Appearance is the material and size of a node.
type Appearance struct {
	Color     colorful.Color
	Emissive  colorful.Color
	Scale     float64
	Metalness float64
	Roughness float64
}

// EdgeStyle is the material of an edge line.
type EdgeStyle struct {
	Color   colorful.Color
	Opacity float64
	Width   float64
}

// RGB converts a 0xRRGGBB value.
func RGB(hex uint32) colorful.Color {
	return colorful.Color{
		R: float64(hex>>16&0xff) / 255,
		G: float64(hex>>8&0xff) / 255,
		B: float64(hex&0xff) / 255,
	}
}

func scaled(c colorful.Color, f float64) colorful.Color {
	return colorful.Color{R: c.R * f, G: c.G * f, B: c.B * f}
}

var (
	// SelectedColor replaces a node's colour while it is selected.
	SelectedColor = RGB(0xffaa00)

	civilColor = RGB(0x4a9eff)

	factionColors = map[string]colorful.Color{
		"PCC":              RGB(0xff0000),
		"CV":               RGB(0xff6b00),
		"ADA":              RGB(0x9b59b6),
		"TCP":              RGB(0xe74c3c),
		"Família do Norte": RGB(0x3498db),
		"civil":            civilColor,
	}

	typeColors = map[string]colorful.Color{
		network.TypeFamily:            RGB(0x51cf66),
		network.TypeCriminalPartner:   RGB(0xff0000),
		network.TypeSuspiciousContact: RGB(0xff6b00),
		network.TypeAcquaintance:      RGB(0x4a9eff),
		network.TypeAssociate:         RGB(0x9b59b6),
		network.TypeLeadership:        RGB(0xe74c3c),
		network.TypeSubordinate:       RGB(0x3498db),
		network.TypeRival:             RGB(0xff0000),
	}

	classStyles = map[string]struct {
		color colorful.Color
		width float64
	}{
		network.ClassIntraFaction: {RGB(0xff0000), 2},
		network.ClassInterFaction: {RGB(0xff6b00), 2},
		network.ClassFactionCivil: {RGB(0xffd93d), 1.5},
		network.ClassCivil:        {RGB(0x4a9eff), 1},
	}
	normalEdge = RGB(0x2a4a6a)
)

type riskStyle struct {
	multiplier float64
	sizeBonus  float64
	emissive   float64
}

var riskStyles = map[string]riskStyle{
	network.RiskLow:      {1.0, 0, 0.1},
	network.RiskMedium:   {1.2, 0.1, 0.2},
	network.RiskHigh:     {1.4, 0.2, 0.4},
	network.RiskCritical: {1.6, 0.3, 0.6},
}

// BaseColor returns the colour for a node before risk and domain
// adjustments: its faction's colour, or for civilians its dominant
// relationship type's colour.
func BaseColor(c layout.Characteristics) colorful.Color {
	base, ok := factionColors[c.Faction]
	if !ok {
		base = civilColor
	}
	if c.Faction == network.FactionNone || c.Faction == "civil" {
		if tc, ok := typeColors[c.DominantType]; ok {
			base = tc
		}
	}
	return base
}

// DomainShift returns the lightness shift, in [-0.15, 0.14], derived from an
// email domain.
func DomainShift(domain string) float64 {
	sum := 0
	for _, r := range domain {
		sum += int(r)
	}
	return float64(sum%30-15) / 100
}

// NodeAppearance derives a node's base appearance from its characteristics.
func NodeAppearance(c layout.Characteristics) Appearance {
	risk, ok := riskStyles[c.Risk]
	if !ok {
		risk = riskStyle{multiplier: 1, emissive: 0.2}
	}

	col := scaled(BaseColor(c), math.Min(risk.multiplier, 1.5)).Clamped()
	h, s, l := col.Hsl()
	l = math.Max(0.3, math.Min(0.8, l+DomainShift(c.EmailDomain)))
	col = colorful.Hsl(h, s, l).Clamped()

	a := Appearance{
		Color:     col,
		Emissive:  scaled(col, risk.emissive),
		Scale:     0.7 + float64(c.Degree)/15*0.5 + risk.sizeBonus,
		Metalness: 0.3,
		Roughness: 0.7,
	}
	if c.Risk == network.RiskCritical {
		a.Metalness, a.Roughness = 0.8, 0.2
	}
	return a
}

// EdgeAppearance styles an edge by classification and strength. A missing
// strength draws at full intensity.
func EdgeAppearance(r network.Relationship) EdgeStyle {
	class := r.ClassOrNormal()
	base, width := normalEdge, 1.0
	if st, ok := classStyles[class]; ok {
		base, width = st.color, st.width
	}

	intensity := r.StrengthOr(1)
	if intensity == 0 {
		intensity = 1
	}
	opacity := 0.3 + intensity*0.4
	if class == network.ClassIntraFaction || class == network.ClassInterFaction {
		opacity = math.Min(0.9, opacity+0.2)
	}
	return EdgeStyle{
		Color:   scaled(base, 0.5).BlendRgb(base, intensity).Clamped(),
		Opacity: opacity,
		Width:   width,
	}
}
