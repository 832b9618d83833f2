package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mdifflin/paperledger/internal/harness"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <scenarios-dir>",
		Short: "Run YAML conformance scenarios against the engine",
		Long: `Run every *.yaml scenario in a directory against a fresh throwaway
ledger and report expectation failures. Exits 1 if any scenario fails.

Example:
  paperledger verify ./scenarios`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, cmd, args[0])
		},
	}

	return cmd
}

func runVerify(opts *RootOptions, cmd *cobra.Command, dir string) error {
	scenarios, err := harness.LoadDir(dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenarios", err)
	}

	var results []*harness.Result
	failed := 0
	for _, sc := range scenarios {
		result, err := harness.RunScenario(cmd.Context(), sc, "")
		if err != nil {
			return WrapExitError(ExitCommandError,
				fmt.Sprintf("scenario %q aborted", sc.Name), err)
		}
		results = append(results, result)
		if !result.Pass {
			failed++
		}
	}

	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	if err := formatter.Print(verifyJSON(results), func(w io.Writer) error {
		for _, result := range results {
			status := "PASS"
			if !result.Pass {
				status = "FAIL"
			}
			if _, err := fmt.Fprintf(w, "%s  %s\n", status, result.ScenarioName); err != nil {
				return err
			}
			for _, msg := range result.Errors {
				if _, err := fmt.Fprintf(w, "      %s\n", msg); err != nil {
					return err
				}
			}
		}
		_, err := fmt.Fprintf(w, "\n%d scenarios, %d failed\n", len(results), failed)
		return err
	}); err != nil {
		return err
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", failed, len(results)))
	}
	return nil
}

func verifyJSON(results []*harness.Result) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, result := range results {
		out = append(out, map[string]any{
			"scenario": result.ScenarioName,
			"pass":     result.Pass,
			"errors":   result.Errors,
		})
	}
	return out
}
