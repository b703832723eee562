package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/sleight/internal/seq"
)

// ErrKeyNotFound is returned by mutations targeting a key the
// collection does not hold.
var ErrKeyNotFound = errors.New("docstore: key not found")

// ErrKeyExists is returned by insertions of a key the collection
// already holds.
var ErrKeyExists = errors.New("docstore: key already exists")

// Collection is a SQLite-backed ordered document collection.
//
// It implements seq.LiveCollection: sessions materialize it via
// FetchAll (bracketed by SaveCursor) and subscribe to its native feed
// via Observe. Handles from Store.Collection are stable, so == on the
// handle detects "same collection across recomputations".
type Collection struct {
	store *Store
	name  string

	mu        sync.Mutex
	observers map[int]*subscription
	nextObsID int

	// cursor is the read position for Next. Mutations keep it
	// pointing at the same document where possible; FetchAll never
	// touches it.
	cursor int
}

var _ seq.LiveCollection = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Len returns the number of documents.
func (c *Collection) Len(ctx context.Context) (int, error) {
	var n int
	err := c.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", c.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

// InsertAt inserts a document at index, shifting later documents.
// Index is clamped to [0, len]. Notifies observers with a native
// added-at event.
func (c *Collection) InsertAt(ctx context.Context, index int, key seq.Key, item any) error {
	itemJSON, err := marshalItem(item)
	if err != nil {
		return fmt.Errorf("insert %q: %w", key, err)
	}

	c.mu.Lock()
	n, err := c.Len(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if index < 0 || index > n {
		index = n
	}

	err = c.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM documents WHERE collection = ? AND key = ?",
			c.name, string(key)).Scan(&exists); err != nil {
			return err
		}
		if exists > 0 {
			return fmt.Errorf("%w: %q", ErrKeyExists, string(key))
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE documents SET pos = pos + 1 WHERE collection = ? AND pos >= ?",
			c.name, index); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO documents (collection, key, item, pos) VALUES (?, ?, ?, ?)",
			c.name, string(key), itemJSON, index)
		return err
	})
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("insert %q: %w", key, err)
	}

	// Keep the read cursor on the same document.
	if index <= c.cursor {
		c.cursor++
	}
	subs := c.snapshotObservers()
	c.mu.Unlock()

	for _, cb := range subs {
		if cb.AddedAt != nil {
			cb.AddedAt(key, item, index)
		}
	}
	return nil
}

// Append inserts a document at the end.
func (c *Collection) Append(ctx context.Context, key seq.Key, item any) error {
	n, err := c.Len(ctx)
	if err != nil {
		return err
	}
	return c.InsertAt(ctx, n, key, item)
}

// Update replaces a document's item, notifying observers with a
// native changed event.
func (c *Collection) Update(ctx context.Context, key seq.Key, item any) error {
	itemJSON, err := marshalItem(item)
	if err != nil {
		return fmt.Errorf("update %q: %w", key, err)
	}

	c.mu.Lock()
	res, err := c.store.db.ExecContext(ctx,
		"UPDATE documents SET item = ? WHERE collection = ? AND key = ?",
		itemJSON, c.name, string(key))
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("update %q: %w", key, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		c.mu.Unlock()
		return fmt.Errorf("update: %w: %q", ErrKeyNotFound, string(key))
	}
	subs := c.snapshotObservers()
	c.mu.Unlock()

	for _, cb := range subs {
		if cb.Changed != nil {
			cb.Changed(key, item)
		}
	}
	return nil
}

// Remove deletes a document, closing the position gap and notifying
// observers with a native removed event.
func (c *Collection) Remove(ctx context.Context, key seq.Key) error {
	c.mu.Lock()
	pos, err := c.posOf(ctx, key)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("remove: %w", err)
	}

	err = c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM documents WHERE collection = ? AND key = ?",
			c.name, string(key)); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE documents SET pos = pos - 1 WHERE collection = ? AND pos > ?",
			c.name, pos)
		return err
	})
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("remove %q: %w", key, err)
	}

	if pos < c.cursor {
		c.cursor--
	}
	subs := c.snapshotObservers()
	c.mu.Unlock()

	for _, cb := range subs {
		if cb.Removed != nil {
			cb.Removed(key)
		}
	}
	return nil
}

// MoveTo repositions a document to index to (clamped to the valid
// range), notifying observers with a native moved-to event. Moving a
// document to its current position is a no-op and notifies nothing.
func (c *Collection) MoveTo(ctx context.Context, key seq.Key, to int) error {
	c.mu.Lock()
	from, err := c.posOf(ctx, key)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("move: %w", err)
	}
	n, err := c.Len(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if to < 0 || to >= n {
		to = n - 1
	}
	if to == from {
		c.mu.Unlock()
		return nil
	}

	err = c.inTx(ctx, func(tx *sql.Tx) error {
		// Park the moving row outside the dense range, shift the
		// span between from and to, then land the row.
		if _, err := tx.ExecContext(ctx,
			"UPDATE documents SET pos = -1 WHERE collection = ? AND key = ?",
			c.name, string(key)); err != nil {
			return err
		}
		if to > from {
			if _, err := tx.ExecContext(ctx,
				"UPDATE documents SET pos = pos - 1 WHERE collection = ? AND pos > ? AND pos <= ?",
				c.name, from, to); err != nil {
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx,
				"UPDATE documents SET pos = pos + 1 WHERE collection = ? AND pos >= ? AND pos < ?",
				c.name, to, from); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE documents SET pos = ? WHERE collection = ? AND key = ?",
			to, c.name, string(key))
		return err
	})
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("move %q: %w", key, err)
	}
	subs := c.snapshotObservers()
	c.mu.Unlock()

	for _, cb := range subs {
		if cb.MovedTo != nil {
			cb.MovedTo(key, from, to)
		}
	}
	return nil
}

// FetchAll implements seq.LiveCollection: an ordered full read that
// leaves the read cursor untouched.
func (c *Collection) FetchAll() ([]seq.Entry, error) {
	rows, err := c.store.db.Query(
		"SELECT key, item FROM documents WHERE collection = ? ORDER BY pos ASC",
		c.name)
	if err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	defer rows.Close()

	var entries []seq.Entry
	for rows.Next() {
		var key, itemJSON string
		if err := rows.Scan(&key, &itemJSON); err != nil {
			return nil, fmt.Errorf("fetch all: scan: %w", err)
		}
		item, err := unmarshalItem(itemJSON)
		if err != nil {
			return nil, fmt.Errorf("fetch all: item for %q: %w", key, err)
		}
		entries = append(entries, seq.Entry{Key: seq.Key(key), Item: item})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch all: %w", err)
	}
	return entries, nil
}

// SaveCursor implements seq.LiveCollection: captures the current read
// position and returns a restore function.
func (c *Collection) SaveCursor() func() {
	c.mu.Lock()
	pos := c.cursor
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		c.cursor = pos
		c.mu.Unlock()
	}
}

// Next returns the document at the read cursor and advances it.
// Returns ok=false past the end.
func (c *Collection) Next(ctx context.Context) (seq.Entry, bool, error) {
	c.mu.Lock()
	pos := c.cursor
	c.mu.Unlock()

	var key, itemJSON string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT key, item FROM documents WHERE collection = ? AND pos = ?",
		c.name, pos).Scan(&key, &itemJSON)
	if err == sql.ErrNoRows {
		return seq.Entry{}, false, nil
	}
	if err != nil {
		return seq.Entry{}, false, fmt.Errorf("next: %w", err)
	}
	item, err := unmarshalItem(itemJSON)
	if err != nil {
		return seq.Entry{}, false, fmt.Errorf("next: item for %q: %w", key, err)
	}

	c.mu.Lock()
	c.cursor = pos + 1
	c.mu.Unlock()
	return seq.Entry{Key: seq.Key(key), Item: item}, true, nil
}

// Observe implements seq.LiveCollection. The collection's current
// contents are announced to cb as an initial add batch before Observe
// returns; incremental events follow as the collection mutates.
func (c *Collection) Observe(cb seq.NativeCallbacks) seq.Subscription {
	initial, err := c.FetchAll()
	if err != nil {
		// The feed has no error channel; an unreadable collection
		// simply announces nothing initially.
		initial = nil
	}

	c.mu.Lock()
	c.nextObsID++
	sub := &subscription{coll: c, id: c.nextObsID, cb: cb}
	c.observers[sub.id] = sub
	c.mu.Unlock()

	for i, e := range initial {
		if cb.AddedAt != nil {
			cb.AddedAt(e.Key, e.Item, i)
		}
	}
	return sub
}

// subscription is a handle to one registered observer.
type subscription struct {
	coll *Collection
	id   int
	cb   seq.NativeCallbacks
	mu   sync.Mutex
	done bool
}

// Stop unregisters the observer. Idempotent.
func (s *subscription) Stop() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	s.mu.Unlock()

	s.coll.mu.Lock()
	delete(s.coll.observers, s.id)
	s.coll.mu.Unlock()
}

// snapshotObservers copies the registered callbacks for notification
// outside the collection lock. Caller must hold c.mu.
func (c *Collection) snapshotObservers() []seq.NativeCallbacks {
	out := make([]seq.NativeCallbacks, 0, len(c.observers))
	for _, sub := range c.observers {
		out = append(out, sub.cb)
	}
	return out
}

// posOf returns a document's position. Caller must hold c.mu.
func (c *Collection) posOf(ctx context.Context, key seq.Key) (int, error) {
	var pos int
	err := c.store.db.QueryRowContext(ctx,
		"SELECT pos FROM documents WHERE collection = ? AND key = ?",
		c.name, string(key)).Scan(&pos)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %q", ErrKeyNotFound, string(key))
	}
	if err != nil {
		return 0, err
	}
	return pos, nil
}

// inTx runs fn inside a transaction. Caller must hold c.mu.
func (c *Collection) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func marshalItem(item any) (string, error) {
	b, err := json.Marshal(item)
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}
	return string(b), nil
}

func unmarshalItem(itemJSON string) (any, error) {
	var item any
	if err := json.Unmarshal([]byte(itemJSON), &item); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return item, nil
}
