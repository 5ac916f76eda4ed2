package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvaldes/invctl/internal/adapters/api"
	"github.com/mvaldes/invctl/internal/domain"
)

func newProductsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage products",
	}

	cmd.AddCommand(
		newProductsListCmd(app),
		newProductsGetCmd(app),
		newProductsCreateCmd(app),
		newProductsUpdateCmd(app),
		newProductsDeleteCmd(app),
	)

	return cmd
}

func newProductsListCmd(app *app) *cobra.Command {
	var (
		categoryID string
		lowStock   bool
		search     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			filter := api.ProductFilter{
				CategoryID: domain.CategoryID(categoryID),
				LowStock:   lowStock,
				Search:     search,
			}

			var products []domain.Product
			err := runWithBusySpinner(cmd, app, "Fetching products...", func() error {
				fetched, fetchErr := app.products.List(cmd.Context(), filter)
				if fetchErr != nil {
					return fetchErr
				}
				products = fetched
				return nil
			})
			if err != nil {
				return err
			}

			if len(products) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No products found.")
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-28s %-12s %8s %8s %s\n", "SKU", "NAME", "CATEGORY", "STOCK", "MIN", "PRICE")
			for _, product := range products {
				marker := ""
				if product.LowStock() {
					marker = "  [low]"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-28s %-12s %8d %8d %8.2f%s\n",
					product.SKU, product.Name, product.CategoryID, product.Stock, product.MinStock, product.UnitPrice, marker)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&categoryID, "category", "", "Filter by category ID")
	cmd.Flags().BoolVar(&lowStock, "low-stock", false, "Only products at or below minimum stock")
	cmd.Flags().StringVar(&search, "search", "", "Search by name or SKU")

	return cmd
}

func newProductsGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			product, err := app.products.Get(cmd.Context(), domain.ProductID(args[0]))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n  category: %s\n  stock: %d (min %d)\n  price: %.2f\n  active: %t\n",
				product.SKU, product.Name, product.CategoryID, product.Stock, product.MinStock, product.UnitPrice, product.Active)
			return nil
		},
	}
}

func newProductsCreateCmd(app *app) *cobra.Command {
	var product struct {
		sku        string
		name       string
		categoryID string
		price      float64
		stock      int64
		minStock   int64
	}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			created, err := app.products.Create(cmd.Context(), domain.Product{
				SKU:        product.sku,
				Name:       product.name,
				CategoryID: domain.CategoryID(product.categoryID),
				UnitPrice:  product.price,
				Stock:      product.stock,
				MinStock:   product.minStock,
				Active:     true,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created product %s (%s)\n", created.ID, created.SKU)
			return nil
		},
	}

	cmd.Flags().StringVar(&product.sku, "sku", "", "Product SKU")
	cmd.Flags().StringVar(&product.name, "name", "", "Product name")
	cmd.Flags().StringVar(&product.categoryID, "category", "", "Category ID")
	cmd.Flags().Float64Var(&product.price, "price", 0, "Unit price")
	cmd.Flags().Int64Var(&product.stock, "stock", 0, "Initial stock")
	cmd.Flags().Int64Var(&product.minStock, "min-stock", 0, "Minimum stock before a low-stock warning")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProductsUpdateCmd(app *app) *cobra.Command {
	var product struct {
		sku        string
		name       string
		categoryID string
		price      float64
		stock      int64
		minStock   int64
		active     bool
	}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			updated, err := app.products.Update(cmd.Context(), domain.Product{
				ID:         domain.ProductID(args[0]),
				SKU:        product.sku,
				Name:       product.name,
				CategoryID: domain.CategoryID(product.categoryID),
				UnitPrice:  product.price,
				Stock:      product.stock,
				MinStock:   product.minStock,
				Active:     product.active,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated product %s (%s)\n", updated.ID, updated.SKU)
			return nil
		},
	}

	cmd.Flags().StringVar(&product.sku, "sku", "", "Product SKU")
	cmd.Flags().StringVar(&product.name, "name", "", "Product name")
	cmd.Flags().StringVar(&product.categoryID, "category", "", "Category ID")
	cmd.Flags().Float64Var(&product.price, "price", 0, "Unit price")
	cmd.Flags().Int64Var(&product.stock, "stock", 0, "Current stock")
	cmd.Flags().Int64Var(&product.minStock, "min-stock", 0, "Minimum stock before a low-stock warning")
	cmd.Flags().BoolVar(&product.active, "active", true, "Whether the product is active")
	_ = cmd.MarkFlagRequired("sku")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newProductsDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			if err := app.products.Delete(cmd.Context(), domain.ProductID(args[0])); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted product %s\n", args[0])
			return nil
		},
	}
}

func productFilterLowStock() api.ProductFilter {
	return api.ProductFilter{LowStock: true}
}
