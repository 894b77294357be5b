package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/store"
	"github.com/sajansshergill/spec2dv-data-modeler/internal/validate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var reportPath string
	var failOnError bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Run structural validation against the spec store",
		Long: `Run the structural validation checks (field range, reset width, field
overlap) over every field in the spec store and report all findings.

The pass never stops at the first defect; one run produces the complete
issue list.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd, reportPath, failOnError)
		},
	}

	cmd.Flags().StringVar(&reportPath, "report", "", "write a Markdown validation report to this path")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", true, "exit non-zero if ERROR issues are found")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command, reportPath string, failOnError bool) error {
	formatter := newFormatter(opts, cmd)

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open spec store", err)
	}
	defer s.Close()

	version, variant, runID, ok, err := s.LatestSpecVersion(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "read spec version", err)
	}
	if ok {
		if variant == "" {
			variant = "base"
		}
		formatter.VerboseLog("Validating spec_version=%s variant=%s (run %s)", version, variant, runID)
	}

	result, err := validate.Run(cmd.Context(), s)
	if err != nil {
		return WrapExitError(ExitCommandError, "validate spec store", err)
	}

	if reportPath != "" {
		if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
			return WrapExitError(ExitCommandError, "create report directory", err)
		}
		if err := os.WriteFile(reportPath, []byte(result.Markdown()), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "write report", err)
		}
	}

	if opts.Format == "json" {
		data := map[string]any{
			"issues":      result.Issues,
			"issue_count": len(result.Issues),
			"error_count": result.ErrorCount(),
		}
		if ok {
			data["spec_version"] = version
		}
		if reportPath != "" {
			data["report"] = reportPath
		}
		if err := formatter.Success(data); err != nil {
			return err
		}
	} else {
		if reportPath != "" {
			if err := formatter.Success(fmt.Sprintf("Wrote report: %s", reportPath)); err != nil {
				return err
			}
		}
		if err := formatter.Success(result.Summary()); err != nil {
			return err
		}
	}

	if failOnError && result.ErrorCount() > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation errors", result.ErrorCount()))
	}
	return nil
}
