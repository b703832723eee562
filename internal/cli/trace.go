package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sleight/internal/harness"
	"github.com/roach88/sleight/internal/seq"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <scenario-file>",
		Short: "Run one scenario and print its event trace",
		Long: `Run a single scenario and print every structural event the
observation session delivered, in normalized order.

With --format json the output is the canonical trace snapshot, byte
for byte the form used for golden file comparison.

Examples:
  sleight trace ./scenarios/keyed_reorder.yaml
  sleight trace ./scenarios/live_feed.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTrace(opts *RootOptions, path string, cmd *cobra.Command) error {
	// Verbose surfaces the session's debug logging.
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario file not found: %s", path))
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "scenario execution failed", err)
	}

	if opts.Format == "json" {
		snapshot := harness.TraceSnapshot{
			ScenarioName: scenario.Name,
			Trace:        result.Trace,
			FinalOrder:   result.FinalOrder,
		}
		canonicalMap, err := snapshot.ToCanonicalMap()
		if err != nil {
			return WrapExitError(ExitFailure, "failed to build trace snapshot", err)
		}
		data, err := seq.MarshalCanonical(canonicalMap)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to serialize trace", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	} else {
		outputTraceText(cmd, scenario, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed: %s", scenario.Name, strings.Join(result.Errors, "; ")))
	}
	return nil
}

func outputTraceText(cmd *cobra.Command, scenario *harness.Scenario, result *harness.Result) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scenario: %s\n", scenario.Name)

	for i, event := range result.Trace {
		var detail strings.Builder
		if event.Index != nil {
			fmt.Fprintf(&detail, " index=%d", *event.Index)
		}
		if event.From != nil {
			fmt.Fprintf(&detail, " from=%d", *event.From)
		}
		if event.To != nil {
			fmt.Fprintf(&detail, " to=%d", *event.To)
		}
		if event.Before != nil {
			fmt.Fprintf(&detail, " before=%s", *event.Before)
		}
		if event.Item != nil {
			fmt.Fprintf(&detail, " item=%v", event.Item)
		}
		if event.OldItem != nil {
			fmt.Fprintf(&detail, " old_item=%v", event.OldItem)
		}
		fmt.Fprintf(w, "  [%d] step=%d %-7s %s%s\n", i, event.Step, event.Type, event.Key, detail.String())
	}

	fmt.Fprintf(w, "Final order: %v\n", result.FinalOrder)
}
