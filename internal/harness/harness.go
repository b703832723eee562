package harness

import (
	"context"
	"fmt"

	"github.com/roach88/sleight/internal/docstore"
	"github.com/roach88/sleight/internal/observe"
	"github.com/roach88/sleight/internal/reactive"
	"github.com/roach88/sleight/internal/seq"
	"github.com/roach88/sleight/internal/testutil"
)

// runner holds the live state of one scenario execution: the reactive
// runtime, the signal the observed expression reads, the store backing
// set_live steps, and the trace being recorded.
type runner struct {
	store   *docstore.Store
	rt      *reactive.Runtime
	signal  *reactive.Signal[any]
	session *observe.Session
	result  *Result

	// step is the index of the currently executing step; events
	// delivered while it runs are tagged with it.
	step int

	// order mirrors the sequence's key order as reconstructed purely
	// from delivered events.
	order []seq.Key
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory store and a fresh
// reactive runtime for isolation. Keys generated for unkeyed items
// come from a sequential generator, so identical scenarios produce
// identical traces.
func Run(scenario *Scenario) (*Result, error) {
	st, err := docstore.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rt := reactive.NewRuntime()
	r := &runner{
		store:  st,
		rt:     rt,
		signal: reactive.NewSignal[any](rt, nil),
		result: NewResult(),
		step:   -1,
	}

	// The initial run observes the signal's nil starting value, which
	// materializes empty and delivers nothing.
	session, err := observe.Observe(rt, testutil.NewSequenceKeyGenerator(), func() any {
		return r.signal.Get()
	}, r.callbacks())
	if err != nil {
		return nil, fmt.Errorf("failed to start observation: %w", err)
	}
	r.session = session
	defer session.Stop()

	ctx := context.Background()
	for i, step := range scenario.Steps {
		r.step = i
		if err := r.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	normalizeTrace(r.result.Trace)
	r.result.FinalOrder = make([]string, len(r.order))
	for i, k := range r.order {
		r.result.FinalOrder[i] = string(k)
	}

	for _, errMsg := range EvaluateAssertions(r.result, scenario.Assertions) {
		r.result.AddError(errMsg)
	}

	return r.result, nil
}

// execute runs one scenario step.
func (r *runner) execute(ctx context.Context, step Step) error {
	switch {
	case step.SetEmpty:
		return r.signal.Set(nil)

	case step.SetList != nil:
		entries := make([]seq.Entry, len(step.SetList))
		for i, e := range step.SetList {
			entries[i] = seq.Entry{Key: seq.Key(e.Key), Item: e.Item}
		}
		return r.signal.Set(entries)

	case step.SetUnkeyed != nil:
		items := make([]any, len(step.SetUnkeyed))
		copy(items, step.SetUnkeyed)
		return r.signal.Set(items)

	case step.SetLive != "":
		return r.signal.Set(r.store.Collection(step.SetLive))

	case step.Mutate != nil:
		return r.mutate(ctx, step.Mutate)

	case step.Stop:
		r.session.Stop()
		return nil

	default:
		// Unreachable for validated scenarios.
		return fmt.Errorf("step carries no directive")
	}
}

// mutate applies one collection mutation.
func (r *runner) mutate(ctx context.Context, m *MutateSpec) error {
	coll := r.store.Collection(m.Collection)
	key := seq.Key(m.Key)

	switch m.Op {
	case OpInsert:
		return coll.InsertAt(ctx, *m.Index, key, m.Item)
	case OpAppend:
		return coll.Append(ctx, key, m.Item)
	case OpUpdate:
		return coll.Update(ctx, key, m.Item)
	case OpRemove:
		return coll.Remove(ctx, key)
	case OpMove:
		return coll.MoveTo(ctx, key, *m.To)
	default:
		return fmt.Errorf("unknown mutation op %q", m.Op)
	}
}

// callbacks records every delivered event into the trace and keeps
// the order mirror in sync.
func (r *runner) callbacks() observe.Callbacks {
	return observe.Callbacks{
		AddedAt: func(key seq.Key, item any, index int, before *seq.Key) {
			idx := index
			r.result.Trace = append(r.result.Trace, TraceEvent{
				Step:   r.step,
				Type:   "added",
				Key:    string(key),
				Item:   item,
				Index:  &idx,
				Before: keyString(before),
			})
			r.orderInsert(key, index)
		},
		Changed: func(key seq.Key, newItem, oldItem any) {
			r.result.Trace = append(r.result.Trace, TraceEvent{
				Step:    r.step,
				Type:    "changed",
				Key:     string(key),
				Item:    newItem,
				OldItem: oldItem,
			})
		},
		Removed: func(key seq.Key, oldItem any) {
			r.result.Trace = append(r.result.Trace, TraceEvent{
				Step:    r.step,
				Type:    "removed",
				Key:     string(key),
				OldItem: oldItem,
			})
			r.orderRemove(key)
		},
		MovedTo: func(key seq.Key, item any, from, to int, before *seq.Key) {
			f, t := from, to
			r.result.Trace = append(r.result.Trace, TraceEvent{
				Step:   r.step,
				Type:   "moved",
				Key:    string(key),
				Item:   item,
				From:   &f,
				To:     &t,
				Before: keyString(before),
			})
			r.orderRemove(key)
			r.orderInsert(key, to)
		},
	}
}

func (r *runner) orderInsert(key seq.Key, index int) {
	if index < 0 || index > len(r.order) {
		index = len(r.order)
	}
	r.order = append(r.order, "")
	copy(r.order[index+1:], r.order[index:])
	r.order[index] = key
}

func (r *runner) orderRemove(key seq.Key) {
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func keyString(k *seq.Key) *string {
	if k == nil {
		return nil
	}
	s := string(*k)
	return &s
}
