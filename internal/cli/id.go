package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/p-blackswan/designstore/internal/project"
)

// NewIDCommand creates the id command, which prints the project id a
// working directory maps to.
func NewIDCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "id [workdir]",
		Short: "Print the project id for a working directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				id  string
				err error
			)
			if len(args) == 1 {
				id, err = project.NormalizeID(args[0])
			} else {
				id, err = rootOpts.projectID(project.DefaultID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
