package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/softglow/assetdb/internal/config"
	"github.com/softglow/assetdb/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-verify every label whenever the source file changes",
	Long: `Run a verify pass, then watch the manifest or database file and run
another pass after each change. Registries are rebuilt wholesale: a
registry loads its label once, so a changed source needs fresh ones.

Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		path := cfg.Source.ManifestPath
		if cfg.Source.Kind == config.SourceSQLite {
			path = cfg.Source.DBPath
		}
		w, err := watcher.New(watcher.Config{
			Path:        path,
			DebounceDur: cfg.Watch.Debounce,
		})
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		defer func() { _ = w.Stop() }()

		changes, err := w.Start()
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		if err := runVerify(ctx, a, out, false); err != nil {
			fmt.Fprintf(out, "verify failed: %v\n", err)
		}
		fmt.Fprintf(out, "watching %s\n", path)

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				fmt.Fprintf(out, "%s changed, reloading\n", path)
				if err := a.Reload(); err != nil {
					fmt.Fprintf(out, "reload failed: %v\n", err)
					continue
				}
				if err := runVerify(ctx, a, out, false); err != nil {
					fmt.Fprintf(out, "verify failed: %v\n", err)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
