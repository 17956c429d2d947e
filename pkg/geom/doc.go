// Package geom provides the small amount of 3D vector math used by the layout
// engine, the camera framer and the picking layer.
//
// All types are plain values. Nothing in this package allocates or returns
// errors; degenerate inputs (zero-length vectors, empty boxes) have documented
// fallbacks instead.
package geom
