package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvaldes/invctl/internal/domain"
)

func newCategoriesCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage product categories",
	}

	cmd.AddCommand(newCategoriesListCmd(app), newCategoriesCreateCmd(app))

	return cmd
}

func newCategoriesListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			var categories []domain.Category
			err := runWithBusySpinner(cmd, app, "Fetching categories...", func() error {
				fetched, fetchErr := app.categories.List(cmd.Context())
				if fetchErr != nil {
					return fetchErr
				}
				categories = fetched
				return nil
			})
			if err != nil {
				return err
			}

			if len(categories) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No categories found.")
				return nil
			}

			for _, category := range categories {
				line := fmt.Sprintf("%-12s %s", category.ID, category.Name)
				if category.Description != "" {
					line += " - " + category.Description
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			return nil
		},
	}
}

func newCategoriesCreateCmd(app *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			created, err := app.categories.Create(cmd.Context(), domain.Category{
				Name:        args[0],
				Description: description,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", created.ID, created.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "Category description")

	return cmd
}
