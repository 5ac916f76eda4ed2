package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "invctl",
		Short:         "invctl: inventory backend client",
		Long:          "invctl manages products, categories, stock movements, users and roles on an inventory REST backend, handling sign-in, transparent token refresh and session persistence for you.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newStatusCmd(app),
		newProfileCmd(app),
		newProductsCmd(app),
		newCategoriesCmd(app),
		newMovementsCmd(app),
		newUsersCmd(app),
		newRolesCmd(app),
	)

	return rootCmd
}
