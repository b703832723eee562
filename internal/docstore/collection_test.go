package docstore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sleight/internal/seq"
)

func newTestCollection(t *testing.T) *Collection {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store.Collection("test")
}

func keysOf(t *testing.T, c *Collection) []seq.Key {
	t.Helper()
	entries, err := c.FetchAll()
	require.NoError(t, err)
	keys := make([]seq.Key, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// feedEvent is one native-feed delivery captured by observeFeed.
type feedEvent struct {
	typ   string
	key   seq.Key
	item  any
	index int
	from  int
	to    int
}

func observeFeed(c *Collection) (*[]feedEvent, seq.Subscription) {
	events := &[]feedEvent{}
	sub := c.Observe(seq.NativeCallbacks{
		AddedAt: func(key seq.Key, item any, index int) {
			*events = append(*events, feedEvent{typ: "added", key: key, item: item, index: index})
		},
		Changed: func(key seq.Key, item any) {
			*events = append(*events, feedEvent{typ: "changed", key: key, item: item})
		},
		Removed: func(key seq.Key) {
			*events = append(*events, feedEvent{typ: "removed", key: key})
		},
		MovedTo: func(key seq.Key, from, to int) {
			*events = append(*events, feedEvent{typ: "moved", key: key, from: from, to: to})
		},
	})
	return events, sub
}

func TestInsertAndFetchOrder(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	require.NoError(t, c.Append(ctx, "a", "alpha"))
	require.NoError(t, c.Append(ctx, "c", "gamma"))
	require.NoError(t, c.InsertAt(ctx, 1, "b", "beta"))

	entries, err := c.FetchAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []seq.Key{"a", "b", "c"}, keysOf(t, c))
	assert.Equal(t, "beta", entries[1].Item)
}

func TestInsertAtClampsIndex(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	require.NoError(t, c.InsertAt(ctx, 50, "a", 1))
	require.NoError(t, c.InsertAt(ctx, -3, "b", 2))

	assert.Equal(t, []seq.Key{"a", "b"}, keysOf(t, c))
}

func TestInsertDuplicateKey(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	require.NoError(t, c.Append(ctx, "a", 1))
	err := c.Append(ctx, "a", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyExists)

	// Failed insert leaves the collection untouched.
	assert.Equal(t, []seq.Key{"a"}, keysOf(t, c))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	require.NoError(t, c.Append(ctx, "a", "old"))
	require.NoError(t, c.Update(ctx, "a", "new"))

	entries, err := c.FetchAll()
	require.NoError(t, err)
	assert.Equal(t, "new", entries[0].Item)

	err = c.Update(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRemoveClosesGap(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	for i, k := range []seq.Key{"a", "b", "c", "d"} {
		require.NoError(t, c.Append(ctx, k, i))
	}
	require.NoError(t, c.Remove(ctx, "b"))

	assert.Equal(t, []seq.Key{"a", "c", "d"}, keysOf(t, c))

	// Positions stay dense: inserting at the end lands after "d".
	require.NoError(t, c.Append(ctx, "e", 4))
	assert.Equal(t, []seq.Key{"a", "c", "d", "e"}, keysOf(t, c))

	err := c.Remove(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMoveTo(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	for i, k := range []seq.Key{"a", "b", "c", "d"} {
		require.NoError(t, c.Append(ctx, k, i))
	}

	// Forward move.
	require.NoError(t, c.MoveTo(ctx, "a", 2))
	assert.Equal(t, []seq.Key{"b", "c", "a", "d"}, keysOf(t, c))

	// Backward move.
	require.NoError(t, c.MoveTo(ctx, "d", 0))
	assert.Equal(t, []seq.Key{"d", "b", "c", "a"}, keysOf(t, c))

	// Out-of-range target clamps to the last slot.
	require.NoError(t, c.MoveTo(ctx, "d", 99))
	assert.Equal(t, []seq.Key{"b", "c", "a", "d"}, keysOf(t, c))

	err := c.MoveTo(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestObserveInitialBatch(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	require.NoError(t, c.Append(ctx, "a", "alpha"))
	require.NoError(t, c.Append(ctx, "b", "beta"))

	events, sub := observeFeed(c)
	defer sub.Stop()

	// Current contents announced synchronously, in order.
	require.Len(t, *events, 2)
	assert.Equal(t, feedEvent{typ: "added", key: "a", item: "alpha", index: 0}, (*events)[0])
	assert.Equal(t, feedEvent{typ: "added", key: "b", item: "beta", index: 1}, (*events)[1])
}

func TestObserveIncrementalEvents(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	events, sub := observeFeed(c)
	defer sub.Stop()

	require.NoError(t, c.Append(ctx, "a", 1))
	require.NoError(t, c.InsertAt(ctx, 0, "b", 2))
	require.NoError(t, c.Update(ctx, "a", 10))
	require.NoError(t, c.MoveTo(ctx, "a", 0))
	require.NoError(t, c.Remove(ctx, "b"))

	require.Len(t, *events, 5)
	assert.Equal(t, "added", (*events)[0].typ)
	assert.Equal(t, feedEvent{typ: "added", key: "b", item: 2, index: 0}, (*events)[1])
	assert.Equal(t, feedEvent{typ: "changed", key: "a", item: 10}, (*events)[2])
	assert.Equal(t, feedEvent{typ: "moved", key: "a", from: 1, to: 0}, (*events)[3])
	assert.Equal(t, feedEvent{typ: "removed", key: "b"}, (*events)[4])
}

func TestMoveToSamePositionIsSilent(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)
	require.NoError(t, c.Append(ctx, "a", 1))

	events, sub := observeFeed(c)
	defer sub.Stop()
	before := len(*events)

	require.NoError(t, c.MoveTo(ctx, "a", 0))
	assert.Len(t, *events, before)
}

func TestSubscriptionStop(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	events, sub := observeFeed(c)
	sub.Stop()
	sub.Stop() // idempotent

	require.NoError(t, c.Append(ctx, "a", 1))
	assert.Empty(t, *events)
}

func TestStopFromInsideCallback(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	var sub seq.Subscription
	var count int
	sub = c.Observe(seq.NativeCallbacks{
		AddedAt: func(seq.Key, any, int) {
			count++
			sub.Stop()
		},
	})

	require.NoError(t, c.Append(ctx, "a", 1))
	require.NoError(t, c.Append(ctx, "b", 2))
	assert.Equal(t, 1, count)
}

func TestMultipleObservers(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	ev1, sub1 := observeFeed(c)
	ev2, sub2 := observeFeed(c)
	defer sub2.Stop()

	require.NoError(t, c.Append(ctx, "a", 1))
	assert.Len(t, *ev1, 1)
	assert.Len(t, *ev2, 1)

	sub1.Stop()
	require.NoError(t, c.Append(ctx, "b", 2))
	assert.Len(t, *ev1, 1)
	assert.Len(t, *ev2, 2)
}

func TestCursorTraversal(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	for i, k := range []seq.Key{"a", "b", "c"} {
		require.NoError(t, c.Append(ctx, k, i))
	}

	e, ok, err := c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq.Key("a"), e.Key)

	e, ok, err = c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq.Key("b"), e.Key)

	e, ok, err = c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq.Key("c"), e.Key)

	_, ok, err = c.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveCursorRestores(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	for i, k := range []seq.Key{"a", "b", "c"} {
		require.NoError(t, c.Append(ctx, k, i))
	}

	// Advance past "a".
	_, ok, err := c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	restore := c.SaveCursor()

	// Drain the rest.
	for {
		_, ok, err := c.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
	}

	restore()
	e, ok, err := c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq.Key("b"), e.Key)
}

func TestFetchAllLeavesCursorIntact(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	for i, k := range []seq.Key{"a", "b"} {
		require.NoError(t, c.Append(ctx, k, i))
	}
	_, _, err := c.Next(ctx)
	require.NoError(t, err)

	_, err = c.FetchAll()
	require.NoError(t, err)

	e, ok, err := c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq.Key("b"), e.Key)
}

func TestCursorTracksMutations(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	for i, k := range []seq.Key{"a", "b", "c"} {
		require.NoError(t, c.Append(ctx, k, i))
	}

	// Cursor sits at "b".
	_, _, err := c.Next(ctx)
	require.NoError(t, err)

	// Insert before the cursor: the cursor still points at "b".
	require.NoError(t, c.InsertAt(ctx, 0, "x", 9))
	e, ok, err := c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq.Key("b"), e.Key)

	// Cursor now sits at "c". Removing before it keeps it on "c".
	require.NoError(t, c.Remove(ctx, "x"))
	e, ok, err = c.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seq.Key("c"), e.Key)
}

func TestItemRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newTestCollection(t)

	item := map[string]any{"name": "alice", "tags": []any{"x", "y"}}
	require.NoError(t, c.Append(ctx, "doc", item))

	entries, err := c.FetchAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, item, entries[0].Item)
}

func TestCollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	msgs := store.Collection("messages")
	users := store.Collection("users")

	require.NoError(t, msgs.Append(ctx, "a", 1))
	require.NoError(t, users.Append(ctx, "a", 2))

	entries, err := users.FetchAll()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, float64(2), asFloat(entries[0].Item))
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	default:
		panic(fmt.Sprintf("not numeric: %T", v))
	}
}
