package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvaldes/invctl/internal/adapters/api"
	"github.com/mvaldes/invctl/internal/domain"
)

func newMovementsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Record and inspect stock movements",
	}

	cmd.AddCommand(newMovementsListCmd(app), newMovementsRecordCmd(app))

	return cmd
}

func newMovementsListCmd(app *app) *cobra.Command {
	var (
		productID string
		kind      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stock movements",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			filter := api.MovementFilter{
				ProductID: domain.ProductID(productID),
				Kind:      domain.MovementKind(kind),
			}

			var movements []domain.StockMovement
			err := runWithBusySpinner(cmd, app, "Fetching movements...", func() error {
				fetched, fetchErr := app.movements.List(cmd.Context(), filter)
				if fetchErr != nil {
					return fetchErr
				}
				movements = fetched
				return nil
			})
			if err != nil {
				return err
			}

			if len(movements) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No movements found.")
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-12s %-10s %8s %s\n", "WHEN", "PRODUCT", "KIND", "QTY", "REASON")
			for _, movement := range movements {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-20s %-12s %-10s %8d %s\n",
					formatTimestamp(movement.RecordedAt), movement.ProductID, movement.Kind, movement.Quantity, movement.Reason)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&productID, "product", "", "Filter by product ID")
	cmd.Flags().StringVar(&kind, "kind", "", "Filter by kind (IN, OUT, ADJUSTMENT)")

	return cmd
}

func newMovementsRecordCmd(app *app) *cobra.Command {
	var (
		productID string
		kind      string
		quantity  int64
		reason    string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a stock movement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			movementKind := domain.MovementKind(kind)
			switch movementKind {
			case domain.MovementInbound, domain.MovementOutbound, domain.MovementAdjustment:
			default:
				return fmt.Errorf("unknown movement kind %q", kind)
			}

			recorded, err := app.movements.Record(cmd.Context(), domain.StockMovement{
				ProductID: domain.ProductID(productID),
				Kind:      movementKind,
				Quantity:  quantity,
				Reason:    reason,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s of %d for product %s\n",
				recorded.Kind, recorded.Quantity, recorded.ProductID)
			return nil
		},
	}

	cmd.Flags().StringVar(&productID, "product", "", "Product ID")
	cmd.Flags().StringVar(&kind, "kind", "", "Movement kind (IN, OUT, ADJUSTMENT)")
	cmd.Flags().Int64Var(&quantity, "quantity", 0, "Quantity moved")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason for the movement")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("quantity")

	return cmd
}
