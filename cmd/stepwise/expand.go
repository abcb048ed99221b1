package main

import (
	"fmt"

	"github.com/YuminosukeSato/stepwise/interaction"
	"github.com/YuminosukeSato/stepwise/ingest"
	"github.com/YuminosukeSato/stepwise/pkg/errors"
	"github.com/spf13/cobra"
)

func NewExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand <csv>",
		Short: "List the columns produced by interaction expansion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			response, _ := cmd.Flags().GetString("response")
			degree, _ := cmd.Flags().GetInt("degree")
			if response == "" {
				return errors.NewConfigurationError("expand", "response", "is required", nil)
			}

			frame, err := readFrame(args[0])
			if err != nil {
				return err
			}
			ds, err := frame.Numeric(ingest.RealColumn, ingest.EnsembleColumn)
			if err != nil {
				return err
			}
			expanded, specs, err := interaction.Expand(ds, response, degree)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range expanded.Names() {
				if name != response {
					fmt.Fprintln(out, name)
				}
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d interaction columns\n", len(specs))
			return nil
		},
	}
	cmd.Flags().String("response", "", "Response column, excluded from combinations")
	cmd.Flags().Int("degree", 2, "Interaction degree")
	return cmd
}
