package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewKeysCmd creates the keys subcommand.
func NewKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the keyed fingerprint's key set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
			defer cancel()
			info, err := cliCtx.Client.Keys(ctx)
			if err != nil {
				return err
			}

			return cliCtx.Print(cmd.OutOrStdout(), info, func(w io.Writer) {
				fmt.Fprintf(w, "key set %s (%d slots, %d assigned)\n\n", info.Version, info.Length, len(info.Keys))
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "INDEX\tNAME")
				for _, k := range info.Keys {
					fmt.Fprintf(tw, "%d\t%s\n", k.Index, k.Name)
				}
				tw.Flush()
			})
		},
	}
}
