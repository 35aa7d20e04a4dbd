package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vstate/internal/demo"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vstate-demo",
		Short: "Shared-state counter demo for the vstate packages",
		Long: `vstate-demo serves a shared counter backed by a single vstate store.

Every connected browser mutates the same store over WebSocket and
receives the memoized broadcast view whenever it actually changes.
Prometheus metrics are exposed on /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var (
		addr        string
		label       string
		allowOrigin bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := demo.Config{
				Addr:  addr,
				Label: label,
			}
			if allowOrigin {
				cfg.CheckOrigin = func(*http.Request) bool { return true }
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			slog.Info("starting demo server", "addr", addr, "version", version)
			return demo.NewServer(cfg).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8090", "listen address")
	cmd.Flags().StringVar(&label, "label", "shared counter", "initial counter label")
	cmd.Flags().BoolVar(&allowOrigin, "allow-any-origin", false, "disable the WebSocket origin check")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("vstate-demo %s (%s)\n", version, commit)
		},
	}
}
