package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pymetra/registration/internal/app"
	"github.com/pymetra/registration/internal/service"
)

func AuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Google account used for replication",
	}
	authCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show whether a usable Google credential is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				switch {
				case !a.Cfg.GoogleConfigured():
					fmt.Fprintln(cmd.OutOrStdout(), "google: not configured (GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET unset)")
				case a.Remote.Authenticated(ctx):
					fmt.Fprintln(cmd.OutOrStdout(), "google: connected")
				default:
					fmt.Fprintf(cmd.OutOrStdout(), "google: not connected, sign in at %s/admin/google/login\n", a.Cfg.AppURL)
				}
				return nil
			})
		},
	})
	return authCmd
}

// HashPasswordCmd prints a bcrypt hash for ADMIN_PASSWORD_HASH
func HashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if len(password) < 8 {
				return errors.New("password must be at least 8 characters")
			}

			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
