package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemFP-Engine/pkg/client"
	"github.com/turtacn/ChemFP-Engine/pkg/types/chem"
)

// NewSearchCmd creates the search subcommand.
func NewSearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <fingerprint.json>",
		Short: "Find the most similar indexed fingerprints",
		Long:  "Reads a query fingerprint and returns the nearest neighbors from the\nserver's vector index, scored by Tanimoto similarity.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, args[0])
			if err != nil {
				return fmt.Errorf("read fingerprint: %w", err)
			}
			var fp chem.FingerprintDTO
			if err := json.Unmarshal(raw, &fp); err != nil {
				return fmt.Errorf("parse fingerprint: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()
			result, err := cliCtx.Client.Search(ctx, &client.SearchRequest{
				Fingerprint: fp,
				TopK:        topK,
			})
			if err != nil {
				return err
			}

			return cliCtx.Print(cmd.OutOrStdout(), result, func(w io.Writer) {
				if len(result.Hits) == 0 {
					fmt.Fprintln(w, "no matches")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tMOLECULE\tSIMILARITY")
				for _, h := range result.Hits {
					fmt.Fprintf(tw, "%s\t%s\t%.4f\n", h.ID, h.Molecule, h.Similarity)
				}
				tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 0, "number of neighbors to return (default: server setting)")
	return cmd
}
