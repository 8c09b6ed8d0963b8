// Package shm provides the process-shared building blocks the buddy
// allocator is built on: creation of an anonymous, mmap'd shared-memory
// segment, and mutex/rwmutex primitives whose identity survives being
// mapped at different virtual addresses in different processes.
//
// Nothing in this package knows about chunks, classes, or free lists —
// that is the buddy package's job. shm only answers "how do N processes
// get the same bytes, and how do they take turns touching them".
package shm
