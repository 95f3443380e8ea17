package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/softglow/assetdb/internal/typekey"
)

var listCmd = &cobra.Command{
	Use:   "list <label>",
	Short: "Load one label and print its assets",
	Long: `Load the registry for a label and print every asset in it, with
the asset's concrete type and type key.

Examples:
  assetdb list core
  assetdb --manifest ./assets.yaml list ui`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		r, err := a.Registry(args[0])
		if err != nil {
			return err
		}
		assets, err := r.Assets(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading label %s: %w", args[0], err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tKEY")
		for _, item := range assets {
			key, err := typekey.FromValue(item)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%T\t%s\n", item.AssetName(), item, key)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
