package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pymetra/registration/internal/app"
)

func BackfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Upload local-only CVs to Google Drive",
		Long: `Walks every registration and uploads the CVs that only exist in local storage.
Safe to interrupt and re-run: registrations that already have a Drive file are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				report, err := a.BackfillService.Run(ctx)
				if report != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "migrated:       %d\n", report.Migrated)
					fmt.Fprintf(cmd.OutOrStdout(), "already remote: %d\n", report.AlreadyRemote)
					fmt.Fprintf(cmd.OutOrStdout(), "failed:         %d\n", report.Failed)
					fmt.Fprintf(cmd.OutOrStdout(), "total:          %d\n", report.Total)
				}
				return err
			})
		},
	}
}
