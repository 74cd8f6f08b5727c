package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
)

// EnvPrefix is the prefix for environment overrides, e.g. VID2PDF_FETCH_RETRIES
const EnvPrefix = "VID2PDF"

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Defaults are registered key by key so every key can be overridden from the environment
	for key, value := range configValues(domain.DefaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.vid2pdf")
		v.AddConfigPath("/etc/vid2pdf")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	config := domain.DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.BaseDir = infrastructure.ExpandPath(config.Download.BaseDir)
	config.Download.LogsDir = infrastructure.ExpandPath(config.Download.LogsDir)
	config.Tools.YTDLPBinary = infrastructure.ExpandPath(config.Tools.YTDLPBinary)
	config.Tools.FFmpegBinary = infrastructure.ExpandPath(config.Tools.FFmpegBinary)
	for i, dir := range config.Tools.SearchDirs {
		config.Tools.SearchDirs[i] = infrastructure.ExpandPath(dir)
	}

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = infrastructure.ExpandPath(config.Logging.OutputPath)
	}

	return config
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.BaseDir == "" {
		return fmt.Errorf("download base directory not configured")
	}

	if config.Tools.YTDLPBinary == "" || config.Tools.FFmpegBinary == "" {
		return fmt.Errorf("tool binaries not configured")
	}

	if config.Fetch.Retries < 0 || config.Fetch.DownloadRetries < 0 {
		return fmt.Errorf("retries cannot be negative")
	}

	if config.Fetch.MetadataTimeout <= 0 || config.Fetch.ProbeTimeout <= 0 {
		return fmt.Errorf("fetch timeouts must be positive")
	}

	if config.Selection.SizeThreshold <= 0 {
		return fmt.Errorf("size threshold must be positive")
	}

	if config.Selection.AvgSnapshotKB <= 0 {
		return fmt.Errorf("average snapshot size must be positive")
	}

	if config.Snapshot.DefaultInterval < 0 {
		return fmt.Errorf("default interval cannot be negative")
	}

	if config.Snapshot.JPEGQuality < 1 || config.Snapshot.JPEGQuality > 100 {
		return fmt.Errorf("jpeg quality must be between 1 and 100")
	}

	if config.Download.TitleMaxLength < 1 {
		return fmt.Errorf("title max length must be at least 1")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range configValues(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// configValues flattens a config into dotted viper keys
func configValues(c *domain.Config) map[string]interface{} {
	return map[string]interface{}{
		"server.host":               c.Server.Host,
		"server.port":               c.Server.Port,
		"tools.ytdlp_binary":        c.Tools.YTDLPBinary,
		"tools.ffmpeg_binary":       c.Tools.FFmpegBinary,
		"tools.search_dirs":         c.Tools.SearchDirs,
		"fetch.retries":             c.Fetch.Retries,
		"fetch.metadata_timeout":    c.Fetch.MetadataTimeout.String(),
		"fetch.probe_timeout":       c.Fetch.ProbeTimeout.String(),
		"fetch.download_retries":    c.Fetch.DownloadRetries,
		"selection.size_threshold":  c.Selection.SizeThreshold,
		"selection.avg_snapshot_kb": c.Selection.AvgSnapshotKB,
		"download.base_dir":         c.Download.BaseDir,
		"download.logs_dir":         c.Download.LogsDir,
		"download.title_max_length": c.Download.TitleMaxLength,
		"download.write_summary":    c.Download.WriteSummary,
		"snapshot.default_interval": c.Snapshot.DefaultInterval,
		"snapshot.jpeg_quality":     c.Snapshot.JPEGQuality,
		"notification.enabled":      c.Notification.Enabled,
		"notification.method":       c.Notification.Method,
		"logging.level":             c.Logging.Level,
		"logging.format":            c.Logging.Format,
		"logging.output_path":       c.Logging.OutputPath,
	}
}
