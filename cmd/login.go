package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *app) *cobra.Command {
	var (
		username   string
		rememberMe bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the inventory backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				prompted, err := promptLine(cmd, "Username: ")
				if err != nil {
					return err
				}
				username = prompted
			}
			if username == "" {
				return errors.New("username is required")
			}

			password, err := promptPassword(cmd)
			if err != nil {
				return err
			}

			user, err := app.authService.Login(cmd.Context(), username, password, rememberMe)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to sign in with")
	cmd.Flags().BoolVar(&rememberMe, "remember", false, "Request a long-lived session")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.authService.Logout(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func promptLine(cmd *cobra.Command, label string) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword prefers INVCTL_PASSWORD so scripted logins never echo a
// secret through the prompt.
func promptPassword(cmd *cobra.Command) (string, error) {
	if fromEnv := os.Getenv("INVCTL_PASSWORD"); fromEnv != "" {
		return fromEnv, nil
	}
	password, err := promptLine(cmd, "Password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}
