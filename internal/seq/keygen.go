package seq

import "github.com/google/uuid"

// KeyGenerator produces a fresh globally-unique key on demand.
// Implemented by UUIDv7KeyGenerator (production) and
// testutil.SequenceKeyGenerator (tests).
//
// The generator is injected so tests can supply deterministic keys.
type KeyGenerator interface {
	Generate() Key
}

// UUIDv7KeyGenerator generates time-sortable UUIDv7 keys.
//
// UUIDv7 embeds a timestamp in the most significant bits, making keys
// sortable by creation time. This is helpful for debugging and trace
// visualization.
//
// Thread-safety: UUIDv7KeyGenerator is stateless and safe for
// concurrent use.
type UUIDv7KeyGenerator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated key.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7KeyGenerator) Generate() Key {
	return Key(uuid.Must(uuid.NewV7()).String())
}
