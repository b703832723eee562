// Package testutil provides deterministic helpers for sleight tests.
//
// Production code injects seq.UUIDv7KeyGenerator; tests inject
// SequenceKeyGenerator so materialized snapshots - and therefore
// golden traces - are reproducible across runs.
package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/sleight/internal/seq"
)

// SequenceKeyGenerator issues keys "k1", "k2", ... in order.
//
// Unlike the production UUID generator, it can be reset for test
// reuse, so the same scenario produces identical keys every run.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex, though sleight's cooperative model rarely needs it.
type SequenceKeyGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceKeyGenerator creates a generator with the "k" prefix.
func NewSequenceKeyGenerator() *SequenceKeyGenerator {
	return &SequenceKeyGenerator{prefix: "k"}
}

// NewSequenceKeyGeneratorWithPrefix creates a generator with a custom
// prefix, for tests exercising several generators side by side.
func NewSequenceKeyGeneratorWithPrefix(prefix string) *SequenceKeyGenerator {
	return &SequenceKeyGenerator{prefix: prefix}
}

// Generate returns the next key in sequence.
func (g *SequenceKeyGenerator) Generate() seq.Key {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return seq.Key(fmt.Sprintf("%s%d", g.prefix, g.n))
}

// Count returns how many keys have been generated.
func (g *SequenceKeyGenerator) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

// Reset restarts the sequence. After Reset, the next Generate returns
// "<prefix>1" again.
func (g *SequenceKeyGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
