package main

import (
	"github.com/spf13/cobra"

	"github.com/obsrv-dev/obsrv/pkg/describe"
	"github.com/obsrv-dev/obsrv/pkg/obsrv"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check description files",
		Long: `Load each description file and check that it can build a store.

Reports parse errors with their location and data that uses the reserved
names computeds, actions, getJS or getJSON at any depth.

Examples:
  obsrv validate store.hcl
  obsrv validate stores/*.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				data, err := describe.LoadFile(path)
				if err != nil {
					return err
				}
				if err := obsrv.Validate(obsrv.Description{Data: data}); err != nil {
					return err
				}
				success(out, "%s is valid (%d top-level fields)", path, len(data))
			}
			return nil
		},
	}
}
