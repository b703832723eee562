package seq

// Key is an opaque, stable identifier for one logical entry across
// snapshots. Keys are unique within a single snapshot.
type Key string

// Entry is one (key, item) pair in a snapshot.
// The item is opaque - this package never inspects or compares it.
type Entry struct {
	Key  Key
	Item any
}

// Snapshot is an ordered sequence of entries representing one
// materialized view of a sequence expression.
//
// INVARIANTS:
//   - Keys are unique within the snapshot (enforced by the Materializer)
//   - Order is semantically meaningful and preserved
type Snapshot []Entry

// Keys returns the snapshot's keys in order.
func (s Snapshot) Keys() []Key {
	keys := make([]Key, len(s))
	for i, e := range s {
		keys[i] = e.Key
	}
	return keys
}

// IndexOf returns the position of key in the snapshot, or -1 if absent.
func (s Snapshot) IndexOf(key Key) int {
	for i, e := range s {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Items returns an unordered key-to-item association for the snapshot.
func (s Snapshot) Items() map[Key]any {
	items := make(map[Key]any, len(s))
	for _, e := range s {
		items[e.Key] = e.Item
	}
	return items
}

// Clone returns a copy of the snapshot that shares no backing array
// with the original. Items themselves are not copied (they are opaque).
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}

// Kind classifies the value a sequence expression evaluated to.
type Kind int

const (
	// KindEmpty represents a falsy/absent sequence value.
	KindEmpty Kind = iota + 1
	// KindList represents an ordered list of items.
	KindList
	// KindLive represents a handle to a live, incrementally-changing
	// collection.
	KindLive
)

// String returns the kind name for logging and diagnostics.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindList:
		return "list"
	case KindLive:
		return "live"
	default:
		return "unknown"
	}
}

// Identified is implemented by items that carry their own stable
// identity. Items that do not implement Identified receive a freshly
// generated key on every materialization.
type Identified interface {
	IdentityKey() Key
}

// NativeCallbacks is the incremental event feed delivered by a live
// collection to its observers. Indices refer to positions within the
// collection's own ordering at delivery time.
type NativeCallbacks struct {
	AddedAt func(key Key, item any, index int)
	Changed func(key Key, item any)
	Removed func(key Key)
	MovedTo func(key Key, from, to int)
}

// Subscription is a handle to an active native-feed observation.
// Stop must be idempotent.
type Subscription interface {
	Stop()
}

// LiveCollection is the capability interface for an external,
// independently-mutating ordered data source.
//
// Handles are compared with == to detect "same collection across
// recomputations"; implementations must therefore be comparable
// (pointer-shaped handles satisfy this).
//
// Observe delivers the collection's current contents as an initial
// batch of AddedAt callbacks, synchronously, before returning - then
// incremental events as the collection mutates.
type LiveCollection interface {
	// FetchAll returns the collection's current contents in order.
	// It must not disturb the collection's read cursor.
	FetchAll() ([]Entry, error)

	// SaveCursor captures the collection's read position and returns
	// a function restoring it. Callers bracket full traversals with
	// SaveCursor so an independent consumer of the same collection
	// finds its position intact.
	SaveCursor() (restore func())

	// Observe subscribes to the native incremental feed.
	Observe(cb NativeCallbacks) Subscription
}
