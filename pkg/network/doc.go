// Package network defines the records the layout engine consumes: entities
// (people), typed time-bounded relationships between them, and the [Source]
// boundary through which a temporal store supplies them.
//
// Records are owned by the caller. The engine reads them and keeps its own
// derived state keyed by entity id; nothing in this module mutates a record
// it was handed.
//
// # Defaults
//
// Optional fields never produce errors. Accessors apply the defaults used
// throughout the engine:
//
//	Entity.FactionOrNone()          "none" when empty
//	Entity.Risk()                   "low" when empty, aliases normalised
//	Entity.EmailDomain()            "unknown" when no address
//	Relationship.TypeOrUnknown()    "unknown" when empty
//	Relationship.StrengthOr(0.5)    0.5 when absent
//	Relationship.ClassOrNormal()    "normal" when empty
//
// # Time windows
//
// [Window] reproduces the store's filtering semantics so in-process sources
// (see source/jsonfile) behave like remote ones: with a start time a
// relationship is admitted when its validity interval overlaps the window;
// without one it is admitted when it is valid at the window's end.
package network
