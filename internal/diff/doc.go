// Package diff computes minimal ordered edit scripts between key
// sequences.
//
// The package is deliberately self-contained: it operates purely on
// key sequences and knows nothing about items, live collections, or
// any particular storage implementation. It imports only the
// foundational seq types.
//
// ALGORITHM:
//
// Given old and new key orders, the script is built in two phases:
//
//  1. Emit Removed for every old key absent from the new order.
//  2. Find the keys that should NOT move: a longest increasing
//     subsequence (by old position) of the retained keys in new
//     order. Everything else is walked group-by-group, where a group
//     is a run of added/moved keys anchored on the end by an unmoved
//     key (the last group is anchored by a virtual end-of-sequence).
//     Each key in a group is emitted as AddedBefore or MovedBefore
//     the group's anchor.
//
// Using the longest increasing subsequence minimizes the number of
// move operations. Applying the script in emission order to the old
// key order yields exactly the new key order.
//
// CONTRACT: keys must be unique within each input sequence. Duplicate
// keys are a caller contract violation and the result is undefined;
// the snapshot materializer guarantees uniqueness upstream.
package diff
