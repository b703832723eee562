package harness

import (
	"fmt"
	"strings"
)

// AssertionError reports one failed scenario assertion, carrying the
// full event trace so a failure is diagnosable from the message alone.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] step=%d %s %s\n", i+1, event.Step, event.Type, event.Key)
	}

	return buf.String()
}

// assertEventCount checks that an event type occurs exactly Count
// times, optionally filtered by key.
func assertEventCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type != assertion.Event {
			continue
		}
		if assertion.Key != "" && event.Key != assertion.Key {
			continue
		}
		count++
	}

	if count != assertion.Count {
		target := assertion.Event
		if assertion.Key != "" {
			target = fmt.Sprintf("%s for key %q", assertion.Event, assertion.Key)
		}
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, target),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertTraceContains checks that an event of the given type and key
// occurs anywhere in the trace.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type == assertion.Event && event.Key == assertion.Key {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("%s event for key %q", assertion.Event, assertion.Key),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertFinalOrder checks the key order reconstructed from delivered
// events against the expected order.
func assertFinalOrder(result *Result, assertion Assertion) error {
	if len(result.FinalOrder) != len(assertion.Keys) {
		return &AssertionError{
			Type:     AssertFinalOrder,
			Expected: fmt.Sprintf("order %v", assertion.Keys),
			Actual:   fmt.Sprintf("order %v", result.FinalOrder),
			Trace:    result.Trace,
		}
	}
	for i, key := range assertion.Keys {
		if result.FinalOrder[i] != key {
			return &AssertionError{
				Type:     AssertFinalOrder,
				Expected: fmt.Sprintf("order %v", assertion.Keys),
				Actual:   fmt.Sprintf("order %v", result.FinalOrder),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertEventCount:
			err = assertEventCount(result.Trace, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertFinalOrder:
			err = assertFinalOrder(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
