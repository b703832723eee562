package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceCommandText(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"passing.yaml": passingScenario})

	stdout, _, err := executeCommand("trace", filepath.Join(dir, "passing.yaml"))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Scenario: passing")
	assert.Contains(t, stdout, "step=0 added   a")
	assert.Contains(t, stdout, "step=1 added   b index=1")
	assert.Contains(t, stdout, "step=1 changed a")
	assert.Contains(t, stdout, "Final order: [a b]")
}

func TestTraceCommandJSON(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"passing.yaml": passingScenario})

	stdout, _, err := executeCommand("trace", filepath.Join(dir, "passing.yaml"), "--format", "json")
	require.NoError(t, err)

	expected := `{"final_order":["a","b"],"scenario_name":"passing","trace":[` +
		`{"index":0,"item":"alpha","key":"a","step":0,"type":"added"},` +
		`{"index":1,"item":"beta","key":"b","step":1,"type":"added"},` +
		`{"item":"alpha","key":"a","old_item":"alpha","step":1,"type":"changed"}]}`
	assert.Equal(t, expected, strings.TrimSpace(stdout))
}

func TestTraceCommandFailingScenario(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"failing.yaml": failingScenario})

	_, _, err := executeCommand("trace", filepath.Join(dir, "failing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario failing failed")
}

func TestTraceCommandMissingFile(t *testing.T) {
	_, _, err := executeCommand("trace", "/does/not/exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceCommandMalformedFile(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"broken.yaml": "name: broken\n"})

	_, _, err := executeCommand("trace", filepath.Join(dir, "broken.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")
}
