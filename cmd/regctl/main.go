package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pymetra/registration/cmd/regctl/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "regctl",
		Short:        "Operator tools for the registration service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.BackfillCmd())
	rootCmd.AddCommand(cmd.ExportCmd())
	rootCmd.AddCommand(cmd.AuthCmd())
	rootCmd.AddCommand(cmd.HashPasswordCmd())
	rootCmd.AddCommand(cmd.MigrateCmd())

	// backfill checks the context between records, so Ctrl+C stops it cleanly
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
