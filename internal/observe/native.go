package observe

import "github.com/roach88/sleight/internal/seq"

// Native feed translation. While a live collection is attached, its
// incremental events drive the baseline snapshot entry-by-entry and
// are republished through the public callbacks.
//
// Every handler checks stopped first: Stop may be called from inside
// a delivered callback, after which nothing further may fire even if
// the native source still notifies.

func (s *Session) nativeAdded(key seq.Key, item any, index int) {
	if s.stopped {
		return
	}
	if s.attaching && s.last.IndexOf(key) >= 0 {
		// Initial batch re-announcing an entry the attach diff
		// already delivered - forwarding it would double-deliver.
		return
	}
	if index < 0 || index > len(s.last) {
		index = len(s.last)
	}
	s.last = insertEntry(s.last, index, seq.Entry{Key: key, Item: item})
	s.cb.addedAt(key, item, index, s.keyAfter(index))
}

func (s *Session) nativeChanged(key seq.Key, item any) {
	if s.stopped {
		return
	}
	i := s.last.IndexOf(key)
	if i < 0 {
		return
	}
	oldItem := s.last[i].Item
	s.last[i].Item = item
	s.cb.changed(key, item, oldItem)
}

func (s *Session) nativeRemoved(key seq.Key) {
	if s.stopped {
		return
	}
	i := s.last.IndexOf(key)
	if i < 0 {
		return
	}
	oldItem := s.last[i].Item
	s.last = append(s.last[:i], s.last[i+1:]...)
	s.cb.removed(key, oldItem)
}

func (s *Session) nativeMoved(key seq.Key, from, to int) {
	if s.stopped {
		return
	}
	i := s.last.IndexOf(key)
	if i < 0 {
		return
	}
	entry := s.last[i]
	s.last = append(s.last[:i], s.last[i+1:]...)
	if to < 0 || to > len(s.last) {
		to = len(s.last)
	}
	s.last = insertEntry(s.last, to, entry)
	s.cb.movedTo(key, entry.Item, from, to, s.keyAfter(to))
}

// keyAfter returns the key immediately following position i in the
// baseline, or nil when i is the last position.
func (s *Session) keyAfter(i int) *seq.Key {
	if i+1 < len(s.last) {
		k := s.last[i+1].Key
		return &k
	}
	return nil
}
