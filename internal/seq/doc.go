// Package seq provides canonical sequence types for sleight.
//
// This package contains the foundational data model: keys, snapshot
// entries, snapshots, and the classification of sequence values. All
// other internal packages import seq; seq imports nothing internal.
// This ensures seq remains the foundational layer with no circular
// dependencies.
//
// Key design constraints:
//   - Keys are opaque, comparable, and unique within a snapshot
//   - Items are opaque values, never compared for equality
//   - Snapshot order is semantically meaningful (defines "before"
//     relationships used for moves and insert points)
package seq
