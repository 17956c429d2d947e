// Package layout computes 3D positions for an associative network.
//
// The pipeline runs in four stages, each a plain function over caller-owned
// records and engine-owned maps keyed by entity id:
//
//  1. [Extract] derives per-entity [Characteristics] from incident relationships.
//  2. [Assign] groups entities whose (faction, dominant type, degree bucket)
//     triples match into [Clusters].
//  3. [Seed] places each cluster on a sphere with a golden-angle spiral and
//     scatters members within a small ball around their cluster's point.
//  4. [Relax] runs a bounded number of force-directed iterations: pairwise
//     repulsion, edge attraction and attraction toward the cluster centroid,
//     with multiplicative velocity damping.
//
// [Compute] chains the stages and is what most callers want. No stage returns
// an error: relationships with an unknown endpoint are dropped and counted,
// missing optional fields take their defaults, and coincident points are kept
// apart by a distance floor.
//
// Cluster placement is deterministic. Member scatter is random unless
// [Options.Seed] is set, in which case the whole layout is reproducible.
package layout
