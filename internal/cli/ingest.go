package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/ingest"
	"github.com/sajansshergill/spec2dv-data-modeler/internal/store"
)

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	var variantPath string
	var gitCommit string

	cmd := &cobra.Command{
		Use:   "ingest <spec.yaml>",
		Short: "Parse a YAML spec (+ optional variant overlay) into the store",
		Long: `Parse a base register-spec YAML document, optionally paired with a
variant overlay, and write it to the spec store.

Ingest is a destructive replace: every block in the document has its
register set deleted and rewritten, and the global constraint list is
replaced wholesale. The whole bundle applies in one transaction.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(rootOpts, cmd, args[0], variantPath, gitCommit)
		},
	}

	cmd.Flags().StringVar(&variantPath, "variant", "", "variant overlay YAML path")
	cmd.Flags().StringVar(&gitCommit, "git-commit", "", "git commit hash for traceability")

	return cmd
}

func runIngest(opts *RootOptions, cmd *cobra.Command, specPath, variantPath, gitCommit string) error {
	formatter := newFormatter(opts, cmd)

	bundle, err := ingest.LoadBundle(specPath, variantPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load spec", err)
	}

	variantName := bundle.VariantName
	if variantName == "" {
		variantName = "base"
	}
	formatter.VerboseLog("Loaded spec_version=%s variant=%s blocks=%d constraints=%d",
		bundle.SpecVersion, variantName, len(bundle.Doc.IPBlocks), len(bundle.Doc.Constraints))

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open spec store", err)
	}
	defer s.Close()

	runID, err := ingest.Apply(cmd.Context(), s, bundle, gitCommit)
	if err != nil {
		return WrapExitError(ExitCommandError, "apply spec", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"run_id":       runID,
			"spec_version": bundle.SpecVersion,
			"variant":      bundle.VariantName,
			"db":           opts.DBPath,
		})
	}
	return formatter.Success(fmt.Sprintf("Ingested spec_version=%s variant=%s into %s (run %s)",
		bundle.SpecVersion, variantName, opts.DBPath, runID))
}
