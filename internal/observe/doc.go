// Package observe implements the sleight observation session.
//
// A session bridges a reactively-recomputed sequence expression to a
// consumer that wants structural change events - item added, changed,
// removed, moved - instead of a full replacement value each time.
//
// ARCHITECTURE:
//
// Each reactive recomputation evaluates the sequence expression once,
// classifies it, and dispatches:
//
//   - Empty/List: materialize a snapshot, diff it against the stored
//     baseline, emit the edit script followed by changed events, and
//     store the new snapshot as the baseline. Any active live
//     subscription is detached first.
//   - Live collection: if the handle is the one already attached, do
//     nothing - the native feed keeps delivering. Otherwise detach,
//     diff the collection's initial contents against the baseline (so
//     the first observation of a live collection looks exactly like
//     observing an equivalent plain list), then subscribe to the
//     native feed, suppressing the initial add batch the feed
//     re-announces.
//
// ORDERING: within one run, diff-derived events are emitted in the
// diff engine's deterministic order; changed events follow, exactly
// once per key in unspecified order. Across runs, events follow
// trigger order - no reordering, no batching.
//
// The session owns the only live reference to the baseline snapshot
// and the only active native subscription; the subscription is always
// stopped before being replaced or torn down.
package observe
