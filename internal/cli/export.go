package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/export"
	"github.com/sajansshergill/spec2dv-data-modeler/internal/ir"
	"github.com/sajansshergill/spec2dv-data-modeler/internal/store"
)

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var outDir string
	var withJSON, withXML bool

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Export the register tree as JSON and XML",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, cmd, outDir, withJSON, withXML)
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "exports", "output directory")
	cmd.Flags().BoolVar(&withJSON, "json", true, "export json/registers.json")
	cmd.Flags().BoolVar(&withXML, "xml", true, "export xml/registers.xml")

	return cmd
}

func runExport(opts *RootOptions, cmd *cobra.Command, outDir string, withJSON, withXML bool) error {
	formatter := newFormatter(opts, cmd)

	s, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open spec store", err)
	}
	defer s.Close()

	var written []string

	if withJSON {
		path := filepath.Join(outDir, "json", "registers.json")
		if err := writeArtifact(cmd.Context(), path, s, export.WriteRegistersJSON); err != nil {
			return WrapExitError(ExitCommandError, "export registers.json", err)
		}
		written = append(written, path)
	}

	if withXML {
		path := filepath.Join(outDir, "xml", "registers.xml")
		if err := writeArtifact(cmd.Context(), path, s, export.WriteRegistersXML); err != nil {
			return WrapExitError(ExitCommandError, "export registers.xml", err)
		}
		written = append(written, path)
	}

	return reportWritten(formatter, opts, written)
}

// writeArtifact renders one projection into path, creating parent
// directories as needed.
func writeArtifact(ctx context.Context, path string, reader ir.SpecReader, project func(context.Context, ir.SpecReader, io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := project(ctx, reader, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func reportWritten(formatter *OutputFormatter, opts *RootOptions, written []string) error {
	if opts.Format == "json" {
		return formatter.Success(map[string]any{"written": written})
	}
	for _, path := range written {
		if err := formatter.Success(fmt.Sprintf("Wrote %s", path)); err != nil {
			return err
		}
	}
	return nil
}
