package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a scripted series of
// sequence values and collection mutations, plus assertions on the
// events the observation session delivers.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the
	// golden file used for trace comparison.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps is the scripted flow. Each step carries exactly one
	// directive.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded event trace and final order.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted action. Exactly one of the directive fields
// must be set.
type Step struct {
	// SetEmpty replaces the observed sequence with an absent value.
	SetEmpty bool `yaml:"set_empty,omitempty"`

	// SetList replaces the observed sequence with a keyed list.
	SetList []EntrySpec `yaml:"set_list,omitempty"`

	// SetUnkeyed replaces the observed sequence with items carrying
	// no identity of their own; each receives a generated key.
	SetUnkeyed []any `yaml:"set_unkeyed,omitempty"`

	// SetLive points the observed sequence at a named collection in
	// the scenario's store.
	SetLive string `yaml:"set_live,omitempty"`

	// Mutate edits a collection directly, exercising the native feed.
	Mutate *MutateSpec `yaml:"mutate,omitempty"`

	// Stop ends the observation session.
	Stop bool `yaml:"stop,omitempty"`
}

// EntrySpec is one keyed entry in a set_list step.
type EntrySpec struct {
	Key  string `yaml:"key"`
	Item any    `yaml:"item"`
}

// MutateSpec describes one collection mutation.
type MutateSpec struct {
	// Collection names the target collection.
	Collection string `yaml:"collection"`

	// Op is the mutation kind: insert, append, update, remove, move.
	Op string `yaml:"op"`

	// Key identifies the target document.
	Key string `yaml:"key"`

	// Item is the document payload (insert, append, update).
	Item any `yaml:"item,omitempty"`

	// Index is the insertion position (insert).
	Index *int `yaml:"index,omitempty"`

	// To is the destination position (move).
	To *int `yaml:"to,omitempty"`
}

// Mutation op constants.
const (
	OpInsert = "insert"
	OpAppend = "append"
	OpUpdate = "update"
	OpRemove = "remove"
	OpMove   = "move"
)

// Assertion validates the recorded trace or the final key order.
type Assertion struct {
	// Type specifies the assertion type:
	// - "event_count": event occurs exactly Count times
	// - "trace_contains": an event with this type and key occurs
	// - "final_order": reconstructed key order matches Keys
	Type string `yaml:"type"`

	// Event is the event type name: added, changed, removed, moved
	// (used by event_count, trace_contains).
	Event string `yaml:"event,omitempty"`

	// Key filters events by key (required by trace_contains,
	// optional for event_count).
	Key string `yaml:"key,omitempty"`

	// Count is the expected number of occurrences (event_count).
	Count int `yaml:"count,omitempty"`

	// Keys is the expected final key order (final_order).
	Keys []string `yaml:"keys,omitempty"`
}

// Assertion type constants.
const (
	AssertEventCount    = "event_count"
	AssertTraceContains = "trace_contains"
	AssertFinalOrder    = "final_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step carries exactly one directive and
// that the directive's fields are complete.
func validateStep(index int, step *Step) error {
	directives := 0
	if step.SetEmpty {
		directives++
	}
	if step.SetList != nil {
		directives++
	}
	if step.SetUnkeyed != nil {
		directives++
	}
	if step.SetLive != "" {
		directives++
	}
	if step.Mutate != nil {
		directives++
	}
	if step.Stop {
		directives++
	}
	if directives != 1 {
		return fmt.Errorf("steps[%d]: exactly one directive is required, got %d", index, directives)
	}

	for j, entry := range step.SetList {
		if entry.Key == "" {
			return fmt.Errorf("steps[%d].set_list[%d]: key is required", index, j)
		}
	}

	if step.Mutate != nil {
		if err := validateMutate(index, step.Mutate); err != nil {
			return err
		}
	}

	return nil
}

func validateMutate(index int, m *MutateSpec) error {
	if m.Collection == "" {
		return fmt.Errorf("steps[%d].mutate: collection is required", index)
	}
	if m.Key == "" {
		return fmt.Errorf("steps[%d].mutate: key is required", index)
	}

	switch m.Op {
	case OpInsert:
		if m.Index == nil {
			return fmt.Errorf("steps[%d].mutate: index is required for insert", index)
		}
	case OpMove:
		if m.To == nil {
			return fmt.Errorf("steps[%d].mutate: to is required for move", index)
		}
	case OpAppend, OpUpdate, OpRemove:
		// No extra fields.
	case "":
		return fmt.Errorf("steps[%d].mutate: op is required", index)
	default:
		return fmt.Errorf("steps[%d].mutate: unknown op %q", index, m.Op)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for event_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for event_count", index)
		}
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for trace_contains", index)
		}
	case AssertFinalOrder:
		if a.Keys == nil {
			return fmt.Errorf("assertions[%d]: keys list is required for final_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Event != "" {
		switch a.Event {
		case "added", "changed", "removed", "moved":
		default:
			return fmt.Errorf("assertions[%d]: unknown event type %q", index, a.Event)
		}
	}

	return nil
}
