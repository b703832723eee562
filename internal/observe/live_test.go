package observe

import (
	"github.com/roach88/sleight/internal/seq"
)

// fakeCollection is an in-memory LiveCollection with a controllable
// native feed, for exercising the live bridge without a database.
type fakeCollection struct {
	entries      []seq.Entry
	subs         []*fakeSub
	observeCalls int
	cursor       int
	restores     int
}

type fakeSub struct {
	cb      seq.NativeCallbacks
	stopped bool
}

func (s *fakeSub) Stop() { s.stopped = true }

func newFakeCollection(entries ...seq.Entry) *fakeCollection {
	return &fakeCollection{entries: entries}
}

func (c *fakeCollection) FetchAll() ([]seq.Entry, error) {
	out := make([]seq.Entry, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

func (c *fakeCollection) SaveCursor() func() {
	pos := c.cursor
	return func() {
		c.cursor = pos
		c.restores++
	}
}

// Observe registers an observer. Like a real collection feed, it
// announces the current contents as an initial add batch before
// returning.
func (c *fakeCollection) Observe(cb seq.NativeCallbacks) seq.Subscription {
	c.observeCalls++
	sub := &fakeSub{cb: cb}
	c.subs = append(c.subs, sub)
	for i, e := range c.entries {
		if cb.AddedAt != nil {
			cb.AddedAt(e.Key, e.Item, i)
		}
	}
	return sub
}

func (c *fakeCollection) each(fn func(cb seq.NativeCallbacks)) {
	for _, sub := range c.subs {
		if !sub.stopped {
			fn(sub.cb)
		}
	}
}

func (c *fakeCollection) insertAt(index int, key seq.Key, item any) {
	c.entries = append(c.entries, seq.Entry{})
	copy(c.entries[index+1:], c.entries[index:])
	c.entries[index] = seq.Entry{Key: key, Item: item}
	c.each(func(cb seq.NativeCallbacks) {
		if cb.AddedAt != nil {
			cb.AddedAt(key, item, index)
		}
	})
}

func (c *fakeCollection) update(key seq.Key, item any) {
	for i := range c.entries {
		if c.entries[i].Key == key {
			c.entries[i].Item = item
			break
		}
	}
	c.each(func(cb seq.NativeCallbacks) {
		if cb.Changed != nil {
			cb.Changed(key, item)
		}
	})
}

func (c *fakeCollection) remove(key seq.Key) {
	for i := range c.entries {
		if c.entries[i].Key == key {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	c.each(func(cb seq.NativeCallbacks) {
		if cb.Removed != nil {
			cb.Removed(key)
		}
	})
}

func (c *fakeCollection) move(key seq.Key, to int) {
	from := -1
	for i := range c.entries {
		if c.entries[i].Key == key {
			from = i
			break
		}
	}
	entry := c.entries[from]
	c.entries = append(c.entries[:from], c.entries[from+1:]...)
	c.entries = append(c.entries, seq.Entry{})
	copy(c.entries[to+1:], c.entries[to:])
	c.entries[to] = entry
	c.each(func(cb seq.NativeCallbacks) {
		if cb.MovedTo != nil {
			cb.MovedTo(key, from, to)
		}
	})
}
