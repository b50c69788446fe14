package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pymetra/registration/internal/app"
	"github.com/pymetra/registration/internal/service"
)

func ExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export registrations",
	}
	exportCmd.AddCommand(exportCSVCmd())
	return exportCmd
}

func exportCSVCmd() *cobra.Command {
	var out string
	var limit int

	c := &cobra.Command{
		Use:   "csv",
		Short: "Write registrations as CSV, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
				var w io.Writer = cmd.OutOrStdout()
				if out != "" && out != "-" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("create %s: %w", out, err)
					}
					defer f.Close()
					w = f
				}

				n, err := a.ExportService.WriteCSV(ctx, w, limit)
				if err != nil {
					return err
				}
				if out != "" && out != "-" {
					fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d registrations to %s\n", n, out)
				}
				return nil
			})
		},
	}

	c.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	c.Flags().IntVarP(&limit, "limit", "n", service.MaxListLimit, "maximum number of registrations")
	return c
}
