package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemFP-Engine/pkg/client"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// NewComputeCmd creates the compute subcommand.
func NewComputeCmd() *cobra.Command {
	var (
		scheme string
		radius int
		length int
	)

	cmd := &cobra.Command{
		Use:   "compute <graph.json>",
		Short: "Compute a fingerprint for a molecular graph",
		Long:  "Reads a molecular graph (atoms and bonds) as JSON from the given file, or\nfrom stdin when the argument is \"-\", and prints the computed fingerprint.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read graph: %w", err)
			}
			var spec chem.GraphSpec
			if err := json.Unmarshal(raw, &spec); err != nil {
				return fmt.Errorf("parse graph: %w", err)
			}

			req := &client.ComputeRequest{Graph: spec, Scheme: scheme}
			if cmd.Flags().Changed("radius") {
				req.Radius = &radius
			}
			if cmd.Flags().Changed("length") {
				req.Length = &length
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()
			dto, err := cliCtx.Client.Compute(ctx, req)
			if err != nil {
				return err
			}

			return cliCtx.Print(cmd.OutOrStdout(), dto, func(w io.Writer) {
				fmt.Fprintf(w, "id:        %s\n", dto.ID)
				if dto.Molecule != "" {
					fmt.Fprintf(w, "molecule:  %s\n", dto.Molecule)
				}
				fmt.Fprintf(w, "scheme:    %s\n", dto.Scheme)
				if dto.Scheme == chem.SchemeCircular {
					fmt.Fprintf(w, "radius:    %d\n", dto.Radius)
				}
				if dto.KeySet != "" {
					fmt.Fprintf(w, "key set:   %s\n", dto.KeySet)
				}
				fmt.Fprintf(w, "length:    %d\n", dto.Length)
				fmt.Fprintf(w, "bits on:   %d\n", dto.NumOnBits)
			})
		},
	}

	cmd.Flags().StringVar(&scheme, "scheme", "", "fingerprint scheme (circular, keyed)")
	cmd.Flags().IntVar(&radius, "radius", 0, "circular expansion radius")
	cmd.Flags().IntVar(&length, "length", 0, "folded vector length in bits")
	return cmd
}
