// Package cache provides the layout cache used by the pipeline.
//
// A [Cache] is a byte store keyed by strings. Three backends ship with the
// package: [NullCache] (disabled caching), [FileCache] (one JSON file per
// entry, used by the CLI) and [RedisCache] (shared between server replicas).
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes the snapshot content hash
// together with every parameter that changes the output, so a cached layout
// is only ever a recomputation shortcut: the same snapshot with the same seed
// yields the same layout. [ScopedKeyer] adds a namespace prefix.
package cache
