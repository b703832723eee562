// Package harness provides conformance testing for sequence
// observation sessions.
//
// The harness drives an observation session through a scripted series
// of sequence values and live-collection mutations, records every
// structural event the session delivers, and validates the recording
// against assertions and golden files.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - set_list:
//	      - { key: a, item: "alpha" }
//	      - { key: b, item: "beta" }
//	  - set_unkeyed: ["one", "two"]
//	  - set_empty: true
//	  - set_live: messages
//	  - mutate:
//	      collection: messages
//	      op: append
//	      key: c
//	      item: "gamma"
//	  - stop: true
//	assertions:
//	  - type: event_count
//	    event: added
//	    count: 2
//	  - type: trace_contains
//	    event: added
//	    key: a
//	  - type: final_order
//	    keys: [a, b]
//
// Each step carries exactly one directive. set_list replaces the
// sequence with a keyed list; set_unkeyed replaces it with items that
// receive generated keys; set_empty clears it; set_live points it at
// a named collection in the scenario's store; mutate edits a
// collection directly; stop ends the session.
//
// # Assertion Types
//
//   - event_count: the named event type occurs exactly N times
//     (optionally filtered by key)
//   - trace_contains: an event of the given type and key occurs
//   - final_order: the key order reconstructed purely from delivered
//     events matches the expected list
//
// # Deterministic Testing
//
// Scenarios execute with a sequential key generator (generated keys
// are "k1", "k2", ...), a fresh in-memory SQLite store per run, and a
// trace normalization pass that orders the unordered changed batch of
// each transition by key. This ensures identical traces across runs
// for golden file comparison.
package harness
