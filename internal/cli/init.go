package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sajansshergill/spec2dv-data-modeler/internal/store"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Initialize the spec store schema",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			s, err := store.Open(rootOpts.DBPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "initialize spec store", err)
			}
			defer s.Close()

			return formatter.Success(fmt.Sprintf("Initialized spec store at: %s", rootOpts.DBPath))
		},
	}
}
