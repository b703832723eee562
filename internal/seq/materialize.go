package seq

// Materializer turns the raw value produced by a sequence expression
// into a classification and a canonical keyed ordered snapshot.
//
// Recognized shapes:
//   - nil            -> KindEmpty, empty snapshot
//   - []Entry        -> KindList, entries as given
//   - []any          -> KindList; items implementing Identified keep
//     their own key, others draw a fresh generated key
//   - LiveCollection -> KindLive, snapshot from a non-reactive full
//     traversal with the read cursor saved and restored
//
// Any other shape fails with UnsupportedSequenceError.
//
// CONTRACT: every materialization of a keyless list produces entirely
// new keys, even if the list is unchanged between runs. Lists of
// unkeyed values are therefore fully removed-and-readded on every
// recomputation. This is a documented limitation, not a bug.
type Materializer struct {
	keys        KeyGenerator
	nonReactive func(func())
}

// NewMaterializer creates a Materializer.
//
// nonReactive is the reactive context's escape hatch for reading
// values without registering a dependency; it is applied around live
// collection traversals so materializing a collection does not make
// the session depend on its contents. A nil nonReactive runs
// traversals directly.
func NewMaterializer(keys KeyGenerator, nonReactive func(func())) *Materializer {
	if nonReactive == nil {
		nonReactive = func(f func()) { f() }
	}
	return &Materializer{keys: keys, nonReactive: nonReactive}
}

// Materialize classifies value and builds its snapshot.
//
// Snapshot keys are validated for uniqueness; a collision yields a
// DuplicateKeyError before any snapshot is handed to the diff engine.
func (m *Materializer) Materialize(value any) (Kind, Snapshot, error) {
	switch v := value.(type) {
	case nil:
		return KindEmpty, nil, nil

	case []Entry:
		snap := Snapshot(make([]Entry, len(v)))
		copy(snap, v)
		if err := validateKeys(snap); err != nil {
			return 0, nil, err
		}
		return KindList, snap, nil

	case []any:
		snap := make(Snapshot, len(v))
		for i, item := range v {
			var key Key
			if id, ok := item.(Identified); ok {
				key = id.IdentityKey()
			} else {
				key = m.keys.Generate()
			}
			snap[i] = Entry{Key: key, Item: item}
		}
		if err := validateKeys(snap); err != nil {
			return 0, nil, err
		}
		return KindList, snap, nil

	case LiveCollection:
		snap, err := m.materializeLive(v)
		if err != nil {
			return 0, nil, err
		}
		return KindLive, snap, nil

	default:
		return 0, nil, &UnsupportedSequenceError{Value: value}
	}
}

// materializeLive performs a non-reactive, read-only full traversal of
// the collection. The collection's read cursor is saved and restored
// around the traversal, since the owner of the sequence expression may
// independently be consuming that same collection.
func (m *Materializer) materializeLive(lc LiveCollection) (Snapshot, error) {
	restore := lc.SaveCursor()
	defer restore()

	var entries []Entry
	var fetchErr error
	m.nonReactive(func() {
		entries, fetchErr = lc.FetchAll()
	})
	if fetchErr != nil {
		return nil, fetchErr
	}

	snap := Snapshot(entries)
	if err := validateKeys(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// validateKeys enforces snapshot key uniqueness.
func validateKeys(s Snapshot) error {
	seen := make(map[Key]bool, len(s))
	for _, e := range s {
		if seen[e.Key] {
			return &DuplicateKeyError{Key: e.Key}
		}
		seen[e.Key] = true
	}
	return nil
}
