package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"realmshard/pkg/config"
	"realmshard/pkg/content"
	"realmshard/pkg/persistence"
	"realmshard/pkg/server"
)

func main() {
	cfg := loadAndConfigureSystem()

	if err := server.InitTimeoutConfig(cfg); err != nil {
		logrus.WithError(err).Fatal("invalid timeout configuration")
	}

	var table *content.Table
	err := server.ExecuteWithConfigLoaderCircuitBreaker(context.Background(), func(ctx context.Context) error {
		loaded, loadErr := content.Load(cfg.ContentDir)
		table = loaded
		return loadErr
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to load content tables")
	}

	store, err := persistence.NewStore(cfg.DBPath, cfg.SessionTokenLifetime)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open persistence store")
	}

	metrics := server.NewMetrics()
	gs := server.NewGameServer(cfg, table, store, metrics, logrus.WithField("component", "gameserver"))

	done := make(chan struct{})
	go gs.Run(done)

	alerter := server.NewPerformanceAlerter(server.DefaultAlertThresholds(), &server.LogAlertHandler{}, metrics)
	alerter.SetTickDurationSource(gs.LastTickDuration)
	alertCtx, stopAlerting := context.WithCancel(context.Background())
	go alerter.Start(alertCtx)

	perfMonitor := server.NewPerformanceMonitor(metrics, cfg.MetricsInterval)
	go perfMonitor.Start()

	httpServer := buildHTTPServer(cfg, gs, metrics, done)
	executeServerLifecycle(httpServer, done)
	stopAlerting()
	perfMonitor.Stop()
}

// loadAndConfigureSystem loads configuration and sets up logging.
func loadAndConfigureSystem() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	configureLogging(cfg.LogLevel)
	logStartupInfo(cfg)
	return cfg
}

// configureLogging sets up the logging system based on configuration.
func configureLogging(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// logStartupInfo logs server startup information.
func logStartupInfo(cfg *config.Config) {
	logrus.WithFields(logrus.Fields{
		"port":      cfg.ServerPort,
		"tickRate":  cfg.TickRate,
		"aoiRadius": cfg.AOIRadius,
		"logLevel":  cfg.LogLevel,
	}).Info("starting realm server")
}

// buildHTTPServer wires the WebSocket endpoint alongside the health and
// metrics handlers behind the shared request middleware chain.
func buildHTTPServer(cfg *config.Config, gs *server.GameServer, metrics *server.Metrics, done <-chan struct{}) *http.Server {
	health := server.NewHealthChecker(done, metrics)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gs.ServeWS)
	mux.HandleFunc("/healthz", health.HealthHandler)
	mux.HandleFunc("/readyz", health.ReadinessHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	mux.Handle("/metrics", metrics.GetHandler())

	var handler http.Handler = mux
	handler = server.CORSMiddleware(cfg.AllowedOrigins)(handler)
	handler = metrics.MetricsMiddleware(handler)
	handler = server.LoggingMiddleware(handler)
	handler = server.RecoveryMiddleware(handler)
	handler = server.RequestIDMiddleware(handler)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: handler,
	}
}

// executeServerLifecycle handles the complete server lifecycle including
// startup and graceful shutdown.
func executeServerLifecycle(srv *http.Server, done chan struct{}) {
	sigChan, errChan := setupShutdownHandling()
	startServerAsync(srv, errChan)
	waitForShutdownSignal(sigChan, errChan)
	performGracefulShutdown(srv, done)
}

// setupShutdownHandling creates channels for graceful shutdown signal handling.
func setupShutdownHandling() (chan os.Signal, chan error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	errChan := make(chan error, 1)
	return sigChan, errChan
}

// startServerAsync starts the HTTP server in a background goroutine.
func startServerAsync(srv *http.Server, errChan chan error) {
	go func() {
		logrus.WithField("address", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server failed: %w", err)
		}
	}()
}

// waitForShutdownSignal waits for either a shutdown signal or server error.
func waitForShutdownSignal(sigChan chan os.Signal, errChan chan error) {
	select {
	case sig := <-sigChan:
		logrus.WithField("signal", sig).Info("received shutdown signal")
	case err := <-errChan:
		logrus.WithError(err).Error("server error")
	}
}

// performGracefulShutdown stops the tick loop and drains in-flight HTTP
// connections within a fixed 30-second timeout; cfg.ShutdownTimeout is not
// consulted.
func performGracefulShutdown(srv *http.Server, done chan struct{}) {
	close(done)

	logrus.Info("shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("error during HTTP server shutdown")
	}
}
