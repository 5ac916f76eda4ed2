package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	tomlrepo "github.com/mvaldes/invctl/internal/adapters/repo/toml"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage backend connection profiles",
	}

	cmd.AddCommand(newProfileListCmd(app), newProfileAddCmd(app), newProfileUseCmd(app))

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(profiles) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured. Add one with 'invctl profile add'.")
				return nil
			}

			for _, profile := range profiles {
				marker := " "
				if profile.Default {
					marker = "*"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s", marker, profile.Name, profile.BaseURL)
				if profile.Username != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (%s)", profile.Username)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}

			return nil
		},
	}
}

func newProfileAddCmd(app *app) *cobra.Command {
	var (
		baseURL    string
		username   string
		setDefault bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := tomlrepo.Profile{
				Name:     args[0],
				BaseURL:  baseURL,
				Username: username,
				Default:  setDefault,
			}

			if err := app.profiles.Save(cmd.Context(), profile); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %q\n", profile.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "", "Backend base URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to suggest at login")
	cmd.Flags().BoolVar(&setDefault, "default", false, "Make this the default profile")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func newProfileUseCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Make a profile the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.profiles.SetDefault(cmd.Context(), args[0]); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default profile set to %q\n", args[0])
			return nil
		},
	}
}
