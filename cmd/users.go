package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvaldes/invctl/internal/domain"
)

func newUsersCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect backend users",
	}

	cmd.AddCommand(newUsersListCmd(app), newUsersGetCmd(app))

	return cmd
}

func newUsersListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			var users []domain.UserProfile
			err := runWithBusySpinner(cmd, app, "Fetching users...", func() error {
				fetched, fetchErr := app.users.List(cmd.Context())
				if fetchErr != nil {
					return fetchErr
				}
				users = fetched
				return nil
			})
			if err != nil {
				return err
			}

			if len(users) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No users found.")
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-24s %-12s %s\n", "USERNAME", "NAME", "ROLE", "ACTIVE")
			for _, user := range users {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-16s %-24s %-12s %t\n",
					user.Username, user.DisplayName, user.Role, user.Active)
			}

			return nil
		},
	}
}

func newUsersGetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			user, err := app.users.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n  email: %s\n  role: %s\n  active: %t\n",
				user.Username, user.DisplayName, user.Email, user.Role, user.Active)
			return nil
		},
	}
}

func newRolesCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "List backend roles",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := restoreSession(cmd, app); err != nil {
				return err
			}

			roles, err := app.roles.List(cmd.Context())
			if err != nil {
				return err
			}

			for _, role := range roles {
				line := fmt.Sprintf("%-12s %s", role.Name, role.Description)
				if len(role.Authorities) > 0 {
					line += " [" + strings.Join(role.Authorities, ", ") + "]"
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(line, " "))
			}

			return nil
		},
	}
}
