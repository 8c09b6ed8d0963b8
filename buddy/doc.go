// Package buddy allocates fixed power-of-two chunks from a flat byte
// region shared between processes. See Allocator for the entry points;
// Init creates a new backing segment, Attach joins one a peer process
// already created.
//
// Build with -tags buddydebug to enable extra consistency checks (double
// free detection) at a cost in Alloc/Free latency; omit it in production.
package buddy
