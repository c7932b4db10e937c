package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"shiftwatch/internal/di"
	"shiftwatch/internal/structures"
)

var Version = "dev"

func main() {
	flags := &structures.CliFlags{}

	rootCmd := &cobra.Command{
		Use:           "shiftwatch",
		Short:         "ShiftWatch - collects game reward codes and announces new ones",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config/config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "Mirror logs to the console")

	rootCmd.AddCommand(serveCmd(flags))
	rootCmd.AddCommand(runCmd(flags))
	rootCmd.AddCommand(resendCmd(flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the periodic collector",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := di.InitApp(flags)
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Serve()
		},
	}
}

func runCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Perform one collection pass and print its summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := di.InitRunner(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			summary, err := runner.RunOnce(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, summary)
		},
	}
}

func resendCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resend [hash]",
		Short: "Clear the notified mark of a code and announce it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, cleanup, err := di.InitRunner(flags)
			if err != nil {
				return err
			}
			defer cleanup()

			attempt, err := runner.Resend(contextOf(cmd), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, attempt)
		},
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
