package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/export"
	"github.com/sajansshergill/spec2dv-data-modeler/internal/store"
)

// NewExportDVCommand creates the export-dv command.
func NewExportDVCommand(rootOpts *RootOptions) *cobra.Command {
	var outDir string
	var withConstraints, withUVM bool

	cmd := &cobra.Command{
		Use:   "export-dv",
		Short: "Export DV-facing artifacts",
		Long: `Export the DV constraint-configuration document and the UVM register
model stub for the verification environment.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExportDV(rootOpts, cmd, outDir, withConstraints, withUVM)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", filepath.Join("exports", "dv"), "DV output directory")
	cmd.Flags().BoolVar(&withConstraints, "constraints", true, "export constraints.json")
	cmd.Flags().BoolVar(&withUVM, "uvm", true, "export uvm_regmodel.sv")

	return cmd
}

func runExportDV(opts *RootOptions, cmd *cobra.Command, outDir string, withConstraints, withUVM bool) error {
	formatter := newFormatter(opts, cmd)

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open spec store", err)
	}
	defer s.Close()

	var written []string

	if withConstraints {
		path := filepath.Join(outDir, "constraints.json")
		if err := writeArtifact(cmd.Context(), path, s, export.WriteConstraintsJSON); err != nil {
			return WrapExitError(ExitCommandError, "export constraints.json", err)
		}
		written = append(written, path)
	}

	if withUVM {
		path := filepath.Join(outDir, "uvm_regmodel.sv")
		if err := writeArtifact(cmd.Context(), path, s, export.WriteUVMRegModel); err != nil {
			return WrapExitError(ExitCommandError, "export uvm_regmodel.sv", err)
		}
		written = append(written, path)
	}

	return reportWritten(formatter, opts, written)
}
