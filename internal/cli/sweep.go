package cli

import (
	"context"
	"fmt"

	"auction-engine/internal/app"

	"github.com/spf13/cobra"
)

// NewSweepCommand creates the sweep command.
func NewSweepCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Apply every overdue start and end once, then exit",
		Long: `Run a single scheduler sweep against the configured storage.

Overdue auctions are started or ended, auctions ending soon are alerted and
queued notifications are delivered before the command exits. Running it
again applies nothing new.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sweep(cmd.Context(), rootOpts, cmd)
		},
	}
	return cmd
}

func sweep(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.Build(opts.cfg, app.Options{})
	if err != nil {
		return err
	}
	a.Dispatcher.Start()

	report, sweepErr := a.Scheduler.Sweep(ctx)
	if err := a.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "started=%d ended=%d skipped=%d alerted=%d\n",
		report.Started, report.Ended, report.Skipped, report.Alerted)
	return sweepErr
}
