package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shieldboard/internal/delivery"
	"shieldboard/internal/drilldown"
	"shieldboard/internal/infrastructure"
	"shieldboard/internal/usecase"
	"shieldboard/pkg/logger"
	"shieldboard/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server",
	Example: `  shieldboard serve
  BACKEND_URL=https://api.example.com shieldboard serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)

	// a bare invocation serves
	rootCmd.Flags().StringVarP(&servePort, "port", "p", "", "listen port (overrides PORT)")
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != "" {
		cfg.Server.Port = servePort
	}

	log := logger.New(cfg.Logging.Level)
	m := metrics.New()

	log.WithFields(map[string]any{
		"port":          cfg.Server.Port,
		"api_base":      cfg.APIBase(),
		"backend_url":   cfg.External.BackendURL,
		"poll_interval": cfg.Dashboard.PollInterval.String(),
	}).Info("Starting server")

	client := infrastructure.NewHTTPClient(
		cfg.APIBase(),
		cfg.External.BackendURL,
		cfg.Dashboard.RequestTimeout,
		cfg.Dashboard.RateLimitPerSecond,
		log,
		m,
	)
	store := infrastructure.NewSnapshotStore(cfg.Dashboard.DiscardStaleResponses, log)
	dashboard := usecase.NewDashboardService(client, store, log, m)
	poller := usecase.NewPoller(dashboard, cfg.Dashboard.PollInterval, log, m)

	panel := drilldown.NewPanel(
		cfg.Dashboard.DrilldownCloseDelay,
		&drilldown.BodyScroll{},
		drilldown.WithTransitionHook(func(s drilldown.State) {
			m.RecordDrilldownTransition(string(s.Phase))
		}),
	)
	defer panel.Shutdown()

	handlers := delivery.NewHTTPHandlers(dashboard, panel, client, delivery.ViewConfig{
		RecentSignupsLimit: cfg.Dashboard.RecentSignupsLimit,
		DetailSignupsLimit: cfg.Dashboard.DetailSignupsLimit,
		ProxyCacheControl:  cfg.External.ProxyCacheControl,
	}, log, m)
	router := delivery.NewHTTPRouter(handlers, log, m, prometheus.DefaultGatherer, cfg.Dashboard.RequestTimeout).SetupRoutes()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Listen before polling starts so a same-origin initial load can reach the proxy.
	ln, err := net.Listen("tcp", ":"+cfg.Server.Port)
	if err != nil {
		return fmt.Errorf("listening on port %s: %w", cfg.Server.Port, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	poller.Start(ctx)

	select {
	case <-ctx.Done():
		log.Info("Shutting down server")
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server failed")
			_ = poller.Stop(context.Background())
			return fmt.Errorf("serving: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	if err := poller.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("Dashboard loads still in flight at shutdown")
	}

	log.Info("Server stopped")
	return nil
}
