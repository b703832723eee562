package observe

import "github.com/roach88/sleight/internal/seq"

// Callbacks is the public event surface of a session. Nil fields are
// skipped.
//
// Index arguments refer to positions in the session's view of the
// sequence at delivery time. The before argument names the key that
// ends up immediately after the affected entry, or nil when the entry
// lands at the end.
type Callbacks struct {
	// AddedAt reports a new entry inserted at index.
	AddedAt func(key seq.Key, item any, index int, before *seq.Key)

	// Changed reports an entry whose item may have changed. It fires
	// unconditionally for every key retained across a recomputation -
	// items are opaque here, so deciding whether a change is "real"
	// is the consumer's business.
	Changed func(key seq.Key, newItem, oldItem any)

	// Removed reports an entry that left the sequence.
	Removed func(key seq.Key, oldItem any)

	// MovedTo reports an entry repositioned from one index to another.
	MovedTo func(key seq.Key, item any, from, to int, before *seq.Key)
}

func (cb Callbacks) addedAt(key seq.Key, item any, index int, before *seq.Key) {
	if cb.AddedAt != nil {
		cb.AddedAt(key, item, index, before)
	}
}

func (cb Callbacks) changed(key seq.Key, newItem, oldItem any) {
	if cb.Changed != nil {
		cb.Changed(key, newItem, oldItem)
	}
}

func (cb Callbacks) removed(key seq.Key, oldItem any) {
	if cb.Removed != nil {
		cb.Removed(key, oldItem)
	}
}

func (cb Callbacks) movedTo(key seq.Key, item any, from, to int, before *seq.Key) {
	if cb.MovedTo != nil {
		cb.MovedTo(key, item, from, to, before)
	}
}
