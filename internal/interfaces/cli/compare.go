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

// NewCompareCmd creates the compare subcommand.
func NewCompareCmd() *cobra.Command {
	var metric string

	cmd := &cobra.Command{
		Use:   "compare <a.json> <b.json>",
		Short: "Score the similarity of two fingerprints",
		Long:  "Reads two fingerprint documents (as printed by `chemfp compute -o json`) and\nscores them.  Both fingerprints must share a scheme, length, and key set.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			var fps [2]chem.FingerprintDTO
			for i, path := range args {
				raw, err := readInput(cmd, path)
				if err != nil {
					return fmt.Errorf("read fingerprint %s: %w", path, err)
				}
				if err := json.Unmarshal(raw, &fps[i]); err != nil {
					return fmt.Errorf("parse fingerprint %s: %w", path, err)
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()
			result, err := cliCtx.Client.Compare(ctx, &client.CompareRequest{
				A:      fps[0],
				B:      fps[1],
				Metric: metric,
			})
			if err != nil {
				return err
			}

			return cliCtx.Print(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintf(w, "%s: %.6f\n", result.Metric, result.Score)
			})
		},
	}

	cmd.Flags().StringVar(&metric, "metric", "", "similarity metric (tanimoto, dice, cosine)")
	return cmd
}
