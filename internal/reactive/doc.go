// Package reactive implements the cooperative recomputation primitive
// sleight sessions run on.
//
// The model is deliberately small: a Runtime owns a set of
// computations (created with Autorun); signals and dependencies record
// which computations read them; writing a signal invalidates its
// readers and reruns them before the write returns.
//
// ARCHITECTURE:
//
// Single-threaded cooperative scheduling: a recomputation runs to
// completion before the next trigger for the same runtime is
// processed; there is no concurrent overlap of runs. All work inside
// a run is synchronous - no suspension points exist. The Runtime is
// NOT safe for concurrent use from multiple goroutines.
//
// Errors returned by a computation's function propagate synchronously
// to whoever triggered the rerun (the Set or Changed call); the first
// run's error is returned from Autorun itself.
package reactive
