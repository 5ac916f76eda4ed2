package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	statusadapter "github.com/mvaldes/invctl/internal/adapters/render/status"
	"github.com/mvaldes/invctl/internal/domain"
)

func newWhoamiCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			user := app.store.CurrentUser()
			if user == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) role=%s email=%s\n", user.Username, user.DisplayName, user.Role, user.Email)
			return nil
		},
	}
}

func newStatusCmd(app *app) *cobra.Command {
	var (
		asJSON       bool
		withLowStock bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show session and backend status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			snapshot := app.store.Snapshot()
			report := statusadapter.Report{
				Backend:     app.backendURL,
				State:       app.refresher.State(),
				User:        app.store.CurrentUser(),
				ActiveCalls: app.aggregator.Active(),
				Busy:        app.aggregator.Visible(),
			}
			if snapshot.ExpiresAt > 0 {
				report.TokenExpires = time.Unix(snapshot.ExpiresAt, 0)
			}

			if withLowStock && report.User != nil {
				lowStock, err := fetchLowStock(cmd, app)
				if err != nil {
					return err
				}
				report.LowStock = lowStock
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			rendered, err := app.statusRenderer(report, statusadapter.RenderOptions{Now: app.now()})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print status as JSON")
	cmd.Flags().BoolVar(&withLowStock, "low-stock", false, "Include products at or below minimum stock")

	return cmd
}

func fetchLowStock(cmd *cobra.Command, app *app) ([]domain.Product, error) {
	var products []domain.Product
	err := runWithBusySpinner(cmd, app, "Fetching low-stock products...", func() error {
		fetched, fetchErr := app.products.List(cmd.Context(), productFilterLowStock())
		if fetchErr != nil {
			return fetchErr
		}
		products = fetched
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch low-stock products: %w", err)
	}

	return products, nil
}

// restoreSession rehydrates the persisted session before a command runs. A
// corrupt stored session is reported once and the command continues signed
// out.
func restoreSession(cmd *cobra.Command, app *app) error {
	err := app.authService.Restore(cmd.Context())
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrSessionInvalid) {
		_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Stored session was invalid and has been cleared. Run `invctl login`.")
		return nil
	}
	return err
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
