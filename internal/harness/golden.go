package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sleight/internal/seq"
)

// RunWithGolden executes a scenario and compares the normalized trace
// against a golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Golden files are the source of truth for expected event traces.
// Test failure (via goldie) occurs if the trace doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-computed result's trace against a
// golden file named after scenarioName.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		FinalOrder:   result.FinalOrder,
	}

	canonicalMap, err := snapshot.ToCanonicalMap()
	if err != nil {
		return err
	}
	traceJSON, err := seq.MarshalCanonical(canonicalMap)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
