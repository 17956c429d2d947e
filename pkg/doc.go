// Package pkg provides the core libraries for Orbitgraph network visualization.
//
// # Overview
//
// Orbitgraph turns a time-evolving social network into a navigable 3D scene.
// Entities are grouped into clusters of equal role, the clusters are placed on
// a sphere and their members are relaxed with a force-directed pass. The pkg
// directory is organized into five areas:
//
//  1. [network] and [source] - Domain types and the stores they come from
//  2. [layout] - Clustering, seeding and relaxation
//  3. [camera] and [scene] - Projection, camera animation and interaction
//  4. [pipeline] - Orchestration (fetch → layout → render)
//  5. [graph] - Serialization types for snapshots and layouts
//
// # Architecture
//
// The typical data flow through Orbitgraph:
//
//	JSON database / MongoDB
//	         ↓
//	    [network] window (select relationships valid in a time range)
//	         ↓
//	    [layout] package (characteristics → clusters → sphere seeds → relax)
//	         ↓
//	    [scene] engine (interactive) or [render/nodelink] (SVG/PNG/PDF/DOT)
//
// # Quick Start
//
// Lay out a window of a JSON database and render it:
//
//	store, _ := jsonfile.Open("people.json")
//	runner := pipeline.NewRunner(nil, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg"}}
//	opts.Layout.Seed = 42
//	result, _ := runner.Execute(ctx, store, opts)
//	os.WriteFile("net.svg", result.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// ## Domain
//
// [network] - Entities, relationships, time windows and the [network.Source]
// boundary. Windows are either an instant ("as of") or a closed interval.
//
// [source/jsonfile] - Source backed by a JSON database file.
//
// [source/mongostore] - Source backed by MongoDB, with import and indexes.
//
// ## Layout
//
// [layout] - Derives per-entity characteristics (faction, dominant
// relationship type, degree bucket, risk, email domain), clusters entities by
// the first three, seeds clusters on a golden-angle sphere and relaxes members
// with spring and repulsion forces. [layout.Compute] runs the whole pass and
// is deterministic for a fixed seed.
//
// [geom] - Vectors, boxes and rays.
//
// ## Interaction
//
// [camera] - Perspective lens, camera pose, framing and eased transitions.
//
// [scene] - The engine that owns one laid-out snapshot: node and edge
// visuals, hover and selection, highlighting, keyboard camera control and a
// frame loop where the newest load wins.
//
// ## Output
//
// [render/nodelink] - Projects a layout through its camera and renders it with
// Graphviz.
//
// [render] - Format constants and SVG to PDF/PNG conversion.
//
// ## Infrastructure
//
// [pipeline] - The fetch → layout → render pipeline shared by the CLI and the
// HTTP API, with caching of reproducible layouts and rendered artifacts.
//
// [cache] - File, Redis and null cache backends.
//
// [server] - HTTP API over a source.
//
// [config] - TOML configuration file.
//
// [observability] - Hooks for metrics and tracing.
//
// [errors] - Error codes shared by every package.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...             # All tests
//	go test ./pkg/layout/...      # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [network]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/network
// [source]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/source
// [source/jsonfile]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/source/jsonfile
// [source/mongostore]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/source/mongostore
// [layout]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/layout
// [layout.Compute]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/layout#Compute
// [geom]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/geom
// [camera]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/camera
// [scene]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/scene
// [render]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/render/nodelink
// [graph]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/graph
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/errors
// [network.Source]: https://pkg.go.dev/github.com/matzehuels/orbitgraph/pkg/network#Source
package pkg
