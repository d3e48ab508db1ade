// Package storage serializes chunk reads and writes onto a single worker
// goroutine.
//
// # Overview
//
// Callers queue requests with Load and Save; the worker serves them strictly
// in arrival order and delivers a Result for each on a bounded channel, read
// with Poll or Results. Only the worker touches region files, so the sector
// bitmaps need no locking.
//
// Region files are opened on first use and kept in an LRU cache bounded by
// Options.MaxOpenRegions. Between requests the worker closes handles that
// have been idle for Options.IdleTimeout; a handle is never closed while a
// request is using it. Housekeeping failures are logged and never reach a
// caller.
//
// Close stops new requests, serves everything already queued and closes all
// region files.
package storage
