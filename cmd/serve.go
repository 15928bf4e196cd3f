package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/sheetdash-cli/internal/api"
	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/KaramelBytes/sheetdash-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveAccessLog bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API (upload a spreadsheet, edit charts, fetch series and images)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := settings()
		addr := s.ServerAddr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		kind, err := chart.ParseKind(s.DefaultChartType)
		if err != nil {
			return err
		}
		log := logging.Default()
		mgr := session.NewManager(s.MaxSessions, session.Options{Analysis: analysisOptions(), DefaultKind: kind}, log)
		e := api.NewServer(api.Dependencies{
			Sessions:      mgr,
			Log:           log,
			Version:       Version,
			MaxUploadMB:   s.MaxUploadMB,
			ImageWidth:    s.ImageWidth,
			ImageHeight:   s.ImageHeight,
			AccessLogging: serveAccessLog || debug,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		if ttl := time.Duration(s.SessionTTLMin) * time.Minute; ttl > 0 {
			go mgr.RunJanitor(ctx, time.Minute, ttl)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Dashboard API listening on http://%s\n", addr)
		if err := api.Serve(ctx, e, addr); err != nil {
			return err
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveAccessLog, "access-log", false, "log every request")
}
