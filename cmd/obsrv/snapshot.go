package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/obsrv-dev/obsrv/pkg/describe"
	"github.com/obsrv-dev/obsrv/pkg/obsrv"
)

func snapshotCmd() *cobra.Command {
	var (
		indent int
		sets   []string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Print a store snapshot as JSON",
		Long: `Build a store from a description file, apply writes, and print
the resulting snapshot.

Values given to --set are parsed as JSON; anything that is not valid
JSON is written as a string.

Examples:
  obsrv snapshot store.hcl
  obsrv snapshot store.json --indent 0
  obsrv snapshot store.json --set name=Jane --set address.zip=12345`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := describe.LoadFile(args[0])
			if err != nil {
				return err
			}

			store, err := obsrv.New(obsrv.Description{Data: data}, obsrv.WithCells(obsrv.FreeCells()))
			if err != nil {
				return err
			}

			if err := applySets(store, sets); err != nil {
				return err
			}

			out, err := store.GetJSON(indent)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().IntVarP(&indent, "indent", "i", 2, "Indentation width (0 for compact, at most 10)")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Write path=value before printing (repeatable)")

	return cmd
}

// applySets writes each path=value pair in one batch.
func applySets(store *obsrv.Store, sets []string) error {
	type write struct {
		path  string
		value any
	}

	writes := make([]write, 0, len(sets))
	for _, s := range sets {
		path, raw, ok := strings.Cut(s, "=")
		if !ok || path == "" {
			return fmt.Errorf("invalid --set %q: want path=value", s)
		}
		value, err := describe.ParseValue([]byte(raw))
		if err != nil {
			value = raw
		}
		writes = append(writes, write{path: path, value: value})
	}

	var err error
	store.Batch(func() {
		for _, w := range writes {
			if err = store.SetPath(w.path, w.value); err != nil {
				return
			}
		}
	})
	return err
}
