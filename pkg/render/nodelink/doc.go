// Package nodelink renders a computed 3D layout as a flat node-link diagram.
//
// Each node is projected through the layout's camera pose into the viewport
// and pinned there (pos="x,y!"), so Graphviz neato only draws: it never moves
// a node. Nodes are emitted far to near, which makes nearer nodes paint over
// farther ones. Colours, shapes and sizes follow the interactive scene's
// palette.
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(svg, 2)
package nodelink
