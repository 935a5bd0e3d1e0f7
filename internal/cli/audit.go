package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"auction-engine/internal/app"
	"auction-engine/internal/auctionerrors"
	"auction-engine/utils"

	"github.com/spf13/cobra"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit <auction-id>",
		Short: "Re-derive an auction's aggregates from its bid ledger",
		Long: `Recompute the highest bid, leader and counters of an auction from its
bids and compare them with the stored values.

The derived aggregates are printed as JSON. The command fails when the stored
values have drifted from the ledger.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return audit(cmd.Context(), rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func audit(ctx context.Context, opts *RootOptions, cmd *cobra.Command, auctionID string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !utils.IsID(auctionID) {
		return fmt.Errorf("audit: %q is not an auction id", auctionID)
	}

	a, err := app.Build(opts.cfg, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	derived, auditErr := a.Service.Audit(ctx, auctionID)
	if auditErr != nil && !errors.Is(auditErr, auctionerrors.ErrAggregateDrift) {
		return auditErr
	}

	out, err := json.MarshalIndent(derived, "", "  ")
	if err != nil {
		return fmt.Errorf("encode aggregates: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return auditErr
}
