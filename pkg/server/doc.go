// Package server exposes a network source and the layout pipeline over HTTP.
//
// # Routes
//
//	GET  /healthz                      liveness probe
//	GET  /api/entities?q=&limit=       all entities, or a name/email search
//	GET  /api/entities/{id}            one entity
//	GET  /api/relationships?start=&end= relationships admitted by the window
//	GET  /api/stats?start=&end=        relationship and participant counts
//	GET  /api/time-range               earliest and latest relationship times
//	GET  /api/layout?start=&end=&seed=&iterations=&format=
//	POST /api/layout                   lay out a snapshot sent in the body
//
// Times accept RFC 3339, naive timestamps and bare dates. When start is
// omitted the window is "as of end". Errors are JSON objects with a code and
// a message; the HTTP status follows the code (see [StatusOf]).
//
// Every computed layout carries its ID in the X-Layout-ID response header.
package server
