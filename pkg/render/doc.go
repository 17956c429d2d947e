// Package render converts rendered SVG into raster and print formats.
//
// The [nodelink] subpackage produces the SVG; [ToPDF] and [ToPNG] shell out
// to rsvg-convert (librsvg) for the other formats.
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(l, nodelink.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0) // 2x scale
//
// [nodelink]: github.com/matzehuels/orbitgraph/pkg/render/nodelink
package render

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
