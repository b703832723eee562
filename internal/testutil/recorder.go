package testutil

import "github.com/roach88/sleight/internal/seq"

// RecordedEvent is one observed callback invocation.
type RecordedEvent struct {
	Type    string // "added_at" | "changed" | "removed" | "moved_to"
	Key     seq.Key
	Item    any // new item (added_at, changed, moved_to)
	OldItem any // previous item (changed, removed)
	Index   int // added_at insertion index
	From    int // moved_to source index
	To      int // moved_to destination index
	Before  *seq.Key
}

// Recorder captures session callbacks in delivery order. Its methods
// match the observe.Callbacks field signatures, so wiring is just:
//
//	rec := testutil.NewRecorder()
//	cb := observe.Callbacks{
//	    AddedAt: rec.AddedAt,
//	    Changed: rec.Changed,
//	    Removed: rec.Removed,
//	    MovedTo: rec.MovedTo,
//	}
type Recorder struct {
	Events []RecordedEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) AddedAt(key seq.Key, item any, index int, before *seq.Key) {
	r.Events = append(r.Events, RecordedEvent{
		Type: "added_at", Key: key, Item: item, Index: index, Before: before,
	})
}

func (r *Recorder) Changed(key seq.Key, newItem, oldItem any) {
	r.Events = append(r.Events, RecordedEvent{
		Type: "changed", Key: key, Item: newItem, OldItem: oldItem,
	})
}

func (r *Recorder) Removed(key seq.Key, oldItem any) {
	r.Events = append(r.Events, RecordedEvent{
		Type: "removed", Key: key, OldItem: oldItem,
	})
}

func (r *Recorder) MovedTo(key seq.Key, item any, from, to int, before *seq.Key) {
	r.Events = append(r.Events, RecordedEvent{
		Type: "moved_to", Key: key, Item: item, From: from, To: to, Before: before,
	})
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}

// Types returns the event type names in delivery order.
func (r *Recorder) Types() []string {
	types := make([]string, len(r.Events))
	for i, e := range r.Events {
		types[i] = e.Type
	}
	return types
}

// CountType returns how many events of the given type were recorded.
func (r *Recorder) CountType(eventType string) int {
	n := 0
	for _, e := range r.Events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// ByType returns the recorded events of one type, in delivery order.
func (r *Recorder) ByType(eventType string) []RecordedEvent {
	var out []RecordedEvent
	for _, e := range r.Events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first event with the given type and key.
func (r *Recorder) Find(eventType string, key seq.Key) (RecordedEvent, bool) {
	for _, e := range r.Events {
		if e.Type == eventType && e.Key == key {
			return e, true
		}
	}
	return RecordedEvent{}, false
}
