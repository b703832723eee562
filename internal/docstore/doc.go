// Package docstore provides a SQLite-backed ordered document
// collection implementing the live-collection capability.
//
// A collection is an ordered list of (key, item) documents with a
// native incremental change feed: every mutation (insert, update,
// remove, move) persists to SQLite and notifies registered observers
// with index-addressed events. Observing a collection delivers its
// current contents as an initial add batch before incremental events
// begin.
//
// Collections also expose a read cursor (Next / SaveCursor) so that a
// consumer iterating the collection and a session materializing it can
// share the handle without trampling each other's position.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
//
// Document order uses dense integer positions per collection; all
// ordered reads are ORDER BY pos ASC for deterministic results.
package docstore
