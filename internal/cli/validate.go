package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/sleight/internal/harness"
)

// ValidationIssue describes one invalid scenario file.
type ValidationIssue struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Issues []ValidationIssue `json:"issues,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario YAML files without executing them.

Checks syntax, unknown fields (typos), step directives, and
assertion shapes. Faster than a full test run for development
feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}
	if len(scenarioFiles) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no scenario files in %s", scenariosDir))
	}

	result := ValidationResult{Valid: true, Files: len(scenarioFiles)}
	for _, path := range scenarioFiles {
		formatter.VerboseLog("Validating: %s", path)
		if _, err := harness.LoadScenario(path); err != nil {
			result.Valid = false
			result.Issues = append(result.Issues, ValidationIssue{
				File:    filepath.Base(path),
				Message: err.Error(),
			})
		}
	}

	if opts.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d scenario file(s) valid\n", result.Files)
		} else {
			for _, issue := range result.Issues {
				fmt.Fprintf(cmd.OutOrStdout(), "INVALID  %s: %s\n", issue.File, issue.Message)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario file(s)", len(result.Issues)))
	}
	return nil
}
