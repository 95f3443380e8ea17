package cmd

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/softglow/assetdb/internal/builtin"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the type key of every built-in asset kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := builtin.Keys()
		kinds := make([]string, 0, len(keys))
		for kind := range keys {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KIND\tKEY")
		for _, kind := range kinds {
			fmt.Fprintf(w, "%s\t%s\n", kind, keys[kind])
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}
