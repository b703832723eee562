package diff

import "github.com/roach88/sleight/internal/seq"

// Kind distinguishes edit operations.
type Kind int

const (
	// KindRemoved deletes a key from the sequence.
	KindRemoved Kind = iota + 1
	// KindAddedBefore inserts a new key immediately before Before
	// (or at the end when Before is nil).
	KindAddedBefore
	// KindMovedBefore repositions an existing key immediately before
	// Before (or at the end when Before is nil).
	KindMovedBefore
)

// String returns the operation name for logging and traces.
func (k Kind) String() string {
	switch k {
	case KindRemoved:
		return "removed"
	case KindAddedBefore:
		return "added_before"
	case KindMovedBefore:
		return "moved_before"
	default:
		return "unknown"
	}
}

// Op is one step of an edit script.
type Op struct {
	Kind   Kind
	Key    seq.Key
	Before *seq.Key // nil means end of sequence
}

// Keys computes the edit script transforming oldKeys into newKeys.
//
// Ops are emitted in application order: all removals first, then
// additions and moves walking the new order group-by-group. Applying
// them in emission order to oldKeys yields exactly newKeys.
//
// Keys within each input must be unique (undefined result otherwise).
func Keys(oldKeys, newKeys []seq.Key) []Op {
	oldIndex := make(map[seq.Key]int, len(oldKeys))
	for i, k := range oldKeys {
		oldIndex[k] = i
	}
	newPresent := make(map[seq.Key]bool, len(newKeys))
	for _, k := range newKeys {
		newPresent[k] = true
	}

	var ops []Op

	// Phase 1: removals, in old order.
	for _, k := range oldKeys {
		if !newPresent[k] {
			ops = append(ops, Op{Kind: KindRemoved, Key: k})
		}
	}

	// Phase 2: longest increasing subsequence (by old position) of the
	// retained keys, walked over the new order. Keys on the LIS stay
	// put; everything else is added or moved before its group anchor.
	//
	// seqEnds[l] holds the new-order index of the last key in some
	// increasing subsequence of length l+1; ptrs chains each key to
	// the subsequence it extends.
	n := len(newKeys)
	seqEnds := make([]int, n)
	ptrs := make([]int, n)
	maxLen := 0

	oldPosAt := func(iNew int) int { return oldIndex[newKeys[iNew]] }

	for i := 0; i < n; i++ {
		if _, retained := oldIndex[newKeys[i]]; !retained {
			continue
		}
		j := maxLen
		for j > 0 && oldPosAt(seqEnds[j-1]) >= oldPosAt(i) {
			j--
		}
		if j == 0 {
			ptrs[i] = -1
		} else {
			ptrs[i] = seqEnds[j-1]
		}
		seqEnds[j] = i
		if j+1 > maxLen {
			maxLen = j + 1
		}
	}

	// Pull out the unmoved new-order indices, plus a virtual anchor at
	// the end of the sequence for the final group.
	var unmoved []int
	idx := -1
	if maxLen > 0 {
		idx = seqEnds[maxLen-1]
	}
	for idx >= 0 {
		unmoved = append(unmoved, idx)
		idx = ptrs[idx]
	}
	for i, j := 0, len(unmoved)-1; i < j; i, j = i+1, j-1 {
		unmoved[i], unmoved[j] = unmoved[j], unmoved[i]
	}
	unmoved = append(unmoved, n)

	startOfGroup := 0
	for _, endOfGroup := range unmoved {
		var before *seq.Key
		if endOfGroup < n {
			anchor := newKeys[endOfGroup]
			before = &anchor
		}
		for i := startOfGroup; i < endOfGroup; i++ {
			k := newKeys[i]
			if _, retained := oldIndex[k]; retained {
				ops = append(ops, Op{Kind: KindMovedBefore, Key: k, Before: before})
			} else {
				ops = append(ops, Op{Kind: KindAddedBefore, Key: k, Before: before})
			}
		}
		startOfGroup = endOfGroup + 1
	}

	return ops
}
