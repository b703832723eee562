package observe

import (
	"github.com/roach88/sleight/internal/diff"
	"github.com/roach88/sleight/internal/seq"
)

// emitTransition diffs the baseline snapshot against next, emits the
// resulting structural events followed by changed events, and stores
// next as the new baseline.
//
// The edit script operates on keys; this is where before-keys are
// translated into the indexed public callback shape by replaying the
// script against a working copy of the baseline.
func (s *Session) emitTransition(next seq.Snapshot) {
	old := s.last
	ops := diff.Keys(old.Keys(), next.Keys())

	working := old.Clone()
	nextItems := next.Items()

	for _, op := range ops {
		// Stop may be called from inside a delivered callback; once
		// it has, nothing further fires, mid-script included.
		if s.stopped {
			return
		}
		switch op.Kind {
		case diff.KindRemoved:
			i := working.IndexOf(op.Key)
			oldItem := working[i].Item
			working = append(working[:i], working[i+1:]...)
			s.cb.removed(op.Key, oldItem)

		case diff.KindAddedBefore:
			item := nextItems[op.Key]
			to := insertPos(working, op.Before)
			working = insertEntry(working, to, seq.Entry{Key: op.Key, Item: item})
			s.cb.addedAt(op.Key, item, to, op.Before)

		case diff.KindMovedBefore:
			from := working.IndexOf(op.Key)
			item := nextItems[op.Key]
			working = append(working[:from], working[from+1:]...)
			to := insertPos(working, op.Before)
			working = insertEntry(working, to, seq.Entry{Key: op.Key, Item: item})
			s.cb.movedTo(op.Key, item, from, to, op.Before)
		}
	}

	// Change detection: every key present in both snapshots fires
	// exactly once, unconditionally. Keys are visited via an
	// unordered association, so cross-key order is unspecified.
	oldItems := old.Items()
	for key, newItem := range nextItems {
		if s.stopped {
			return
		}
		if oldItem, ok := oldItems[key]; ok {
			s.cb.changed(key, newItem, oldItem)
		}
	}

	s.last = next
}

// insertPos resolves a before-key to an insertion index in the
// working snapshot: the before-key's position, or the end when nil.
func insertPos(working seq.Snapshot, before *seq.Key) int {
	if before == nil {
		return len(working)
	}
	return working.IndexOf(*before)
}

// insertEntry inserts e at position i.
func insertEntry(snap seq.Snapshot, i int, e seq.Entry) seq.Snapshot {
	snap = append(snap, seq.Entry{})
	copy(snap[i+1:], snap[i:])
	snap[i] = e
	return snap
}
