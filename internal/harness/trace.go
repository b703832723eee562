package harness

import (
	"fmt"
	"sort"
)

// TraceEvent is one recorded structural event, tagged with the step
// that produced it.
//
// Index, From, To, and Before are pointers so that "absent" and
// "zero" stay distinguishable in the trace.
type TraceEvent struct {
	Step    int     `json:"step"`
	Type    string  `json:"type"` // "added", "changed", "removed", "moved"
	Key     string  `json:"key"`
	Item    any     `json:"item,omitempty"`
	OldItem any     `json:"old_item,omitempty"`
	Index   *int    `json:"index,omitempty"`
	From    *int    `json:"from,omitempty"`
	To      *int    `json:"to,omitempty"`
	Before  *string `json:"before,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success. True if all assertions held.
	Pass bool `json:"pass"`

	// Trace contains every delivered event in normalized order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages. Empty if Pass.
	Errors []string `json:"errors,omitempty"`

	// FinalOrder is the key order reconstructed purely from the
	// delivered events. If the events were translated faithfully this
	// matches the sequence's actual final order.
	FinalOrder []string `json:"final_order"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:  true,
		Trace: []TraceEvent{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// normalizeTrace sorts each contiguous run of changed events within a
// step by key. The changed batch of a transition carries no inherent
// order, so normalization is what makes traces comparable across runs.
func normalizeTrace(trace []TraceEvent) {
	i := 0
	for i < len(trace) {
		if trace[i].Type != "changed" {
			i++
			continue
		}
		j := i + 1
		for j < len(trace) && trace[j].Type == "changed" && trace[j].Step == trace[i].Step {
			j++
		}
		run := trace[i:j]
		sort.Slice(run, func(a, b int) bool { return run[a].Key < run[b].Key })
		i = j
	}
}

// TraceSnapshot captures the complete trace of a scenario execution.
// All fields serialize canonically for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	FinalOrder   []string     `json:"final_order"`
}

// ToCanonicalMap converts the snapshot to plain maps and slices for
// canonical JSON serialization.
func (s *TraceSnapshot) ToCanonicalMap() (map[string]any, error) {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"step": event.Step,
			"type": event.Type,
			"key":  event.Key,
		}
		if event.Item != nil {
			item, err := canonicalItem(event.Item)
			if err != nil {
				return nil, fmt.Errorf("trace[%d]: item: %w", i, err)
			}
			eventMap["item"] = item
		}
		if event.OldItem != nil {
			item, err := canonicalItem(event.OldItem)
			if err != nil {
				return nil, fmt.Errorf("trace[%d]: old_item: %w", i, err)
			}
			eventMap["old_item"] = item
		}
		if event.Index != nil {
			eventMap["index"] = *event.Index
		}
		if event.From != nil {
			eventMap["from"] = *event.From
		}
		if event.To != nil {
			eventMap["to"] = *event.To
		}
		if event.Before != nil {
			eventMap["before"] = *event.Before
		}
		traceList[i] = eventMap
	}

	order := make([]any, len(s.FinalOrder))
	for i, k := range s.FinalOrder {
		order[i] = k
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"final_order":   order,
	}, nil
}

// canonicalItem normalizes an item for canonical serialization.
// Items reach the trace by two routes - YAML scenario values and JSON
// round-trips through the document store - which disagree on number
// representation. Integral floats collapse to int64 so both routes
// serialize identically; true floats are rejected, matching the
// canonical form.
func canonicalItem(v any) (any, error) {
	switch val := v.(type) {
	case string, bool, int, int64:
		return val, nil
	case float64:
		if val == float64(int64(val)) {
			return int64(val), nil
		}
		return nil, fmt.Errorf("floats are not representable in canonical traces: %v", val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			converted, err := canonicalItem(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = converted
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, elem := range val {
			converted, err := canonicalItem(elem)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", key, err)
			}
			out[key] = converted
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported item type %T", v)
	}
}
