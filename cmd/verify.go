package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/softglow/assetdb/internal/app"
	"github.com/softglow/assetdb/internal/pubsub"
	"github.com/softglow/assetdb/internal/registry"
	"github.com/softglow/assetdb/internal/source"
)

var verifyVerbose bool

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Load every label and report what the source delivers",
	Long: `Load the registry for every label the source carries and print the
entry and asset counts. The command fails when any load errors or when
the source dropped assets it could not decode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer func() { _ = a.Close() }()

		return runVerify(cmd.Context(), a, cmd.OutOrStdout(), verifyVerbose)
	},
}

// runVerify loads every label and reports counts. Shared with `watch`,
// which re-runs it after each source change.
func runVerify(ctx context.Context, a *app.App, out io.Writer, verbose bool) error {
	labels, err := a.Labels(ctx)
	if err != nil {
		return err
	}

	var failed int
	for _, label := range labels {
		r, err := a.Registry(label)
		if err != nil {
			return err
		}

		var events <-chan pubsub.Event[registry.LoadEvent]
		if verbose && r.State() == registry.NotStarted {
			// Subscribe before the load so nothing is missed.
			evCtx, cancel := context.WithCancel(ctx)
			defer cancel()
			events = r.Events().Subscribe(evCtx)
		}

		if err := r.EnsureLoaded(ctx); err != nil {
			failed++
			fmt.Fprintf(out, "%-20s FAILED: %v\n", label, err)
			continue
		}
		drainLoadEvents(out, events)

		entries, err := r.Count(ctx)
		if err != nil {
			return err
		}
		assets, err := r.Assets(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-20s %d assets, %d entries\n", label, len(assets), entries)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d labels failed to load", failed, len(labels))
	}
	if dc, ok := a.Source().(source.DropCounter); ok {
		if drops := dc.Drops(); drops > 0 {
			return fmt.Errorf("%d assets dropped by decode failures", drops)
		}
	}
	fmt.Fprintf(out, "ok: %d labels\n", len(labels))
	return nil
}

// drainLoadEvents prints buffered delivery events up to the completion
// marker. Events are published before the load completes, so everything
// is already queued once EnsureLoaded returns.
func drainLoadEvents(out io.Writer, events <-chan pubsub.Event[registry.LoadEvent]) {
	if events == nil {
		return
	}
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case pubsub.ItemDeliveredEvent:
				fmt.Fprintf(out, "  delivered %s\n", ev.Payload.Asset)
			case pubsub.LoadCompletedEvent:
				return
			}
		default:
			// The subscriber buffer drops events under pressure; an
			// absent completion marker must not stall the report.
			return
		}
	}
}

func init() {
	verifyCmd.Flags().BoolVarP(&verifyVerbose, "verbose", "v", false,
		"print each delivered asset")
	rootCmd.AddCommand(verifyCmd)
}
