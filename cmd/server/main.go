package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/api"
	"github.com/yourusername/vid2pdf-go/internal/app"
	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/pkg/logger"
)

const version = "1.0.0"

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := runServer(config, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func runServer(config *domain.Config, log *zap.Logger) error {
	log.Info("Starting vid2pdf server",
		zap.String("version", version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("base_dir", config.Download.BaseDir))

	if err := createDirectories(config); err != nil {
		return err
	}

	// Runs execute in the background, so there is nothing to draw a spinner on
	comps := app.NewComponents(config, nil, log)
	for _, tool := range comps.CheckTools() {
		if tool.Err != nil {
			log.Warn("Tool not found, runs will fail until it is installed", zap.String("tool", tool.Name))
		}
	}

	runMgr := app.NewRunManager(comps.Pipeline, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := runMgr.Start(ctx); err != nil {
		return fmt.Errorf("failed to start run manager: %w", err)
	}

	router := api.SetupRouter(api.RouterDeps{
		Runs:     runMgr,
		Metadata: comps.Metadata,
		Selector: comps.Selector,
		LogsDir:  config.Download.LogsDir,
		Version:  version,
		Logger:   log,
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err := <-serveErr:
		runMgr.Stop()
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Cancels the active run, if any, and waits for its tools to exit
	if err := runMgr.Stop(); err != nil {
		log.Error("Error stopping run manager", zap.Error(err))
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.BaseDir,
		config.Download.LogsDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
