// Package scene is the interactive side of the layout engine.
//
// An [Engine] owns one laid-out snapshot: the per-entity visuals created from
// a [layout.Result], the camera [camera.Rig], and the hover, selection and
// highlight state of every node. Drawing is delegated to a [Backend], which
// receives primitives once per snapshot and appearance changes as they
// happen.
//
// # Threading
//
// An Engine is not safe for concurrent use. All calls are expected from one
// goroutine, normally a [Loop]. The only exception is [Engine.BeginLoad],
// which may be called from a fetching goroutine: it returns a token, and
// [Engine.ApplyLoad] installs a [Load] only if no newer token was issued in
// the meantime. Layout for a Load is computed by [PrepareLoad] off the loop,
// so the loop only ever swaps in complete results.
//
// # Interaction
//
// Each node is in one of three states (see [State]): idle, hovered or
// selected. The engine holds the hovered and selected ids, never node
// references, and derives a node's appearance from its base appearance plus
// those flags every time one changes. Reverting a hover or selection
// therefore restores the exact original appearance. [Engine.HighlightEntity]
// is a separate flag layered on top.
package scene
