package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/spendboard/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interactive dashboard",
	Example: `  spendboard serve
  spendboard serve --addr 0.0.0.0:8080 --data-dir ./data --models-dir ./models`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		addr := cfg.ListenAddr
		if cmd.Flags().Changed("addr") && serveAddr != "" {
			addr = serveAddr
		}
		if cfg.SessionSecret == "" {
			a.logger.Warn("session_secret not set; selections will not survive a restart")
		}
		srv, err := server.New(a.dash, server.NewSessionStore(cfg.SessionSecret), a.logger, a.metrics)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return server.Serve(ctx, addr, srv.Handler(), a.logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	rootCmd.AddCommand(serveCmd)
}
