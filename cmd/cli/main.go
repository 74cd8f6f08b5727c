package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/app"
	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/pkg/logger"
)

const version = "1.0.0"

var (
	configPath  string
	logLevel    string
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "vid2pdf",
		Short: "vid2pdf - turn online videos into PDFs of periodic screenshots",
		Long: `Downloads a video with yt-dlp, samples a frame every few seconds with ffmpeg
and stitches the frames into a single PDF.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "Server URL for remote commands")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
}

// loadEnvironment loads the configuration and builds the logger
func loadEnvironment() (*domain.Config, *zap.Logger) {
	config, err := app.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := config.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(logger.Config{
		Level:      level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return config, log
}

// exitWithError prints the operator-facing message for err and exits
func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", domain.UserMessage(err))
	os.Exit(1)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
