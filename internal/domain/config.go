package domain

import (
	"runtime"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Tools        ToolsConfig        `mapstructure:"tools"`
	Fetch        FetchConfig        `mapstructure:"fetch"`
	Selection    SelectionConfig    `mapstructure:"selection"`
	Download     DownloadConfig     `mapstructure:"download"`
	Snapshot     SnapshotConfig     `mapstructure:"snapshot"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ToolsConfig contains external tool locations
type ToolsConfig struct {
	YTDLPBinary  string   `mapstructure:"ytdlp_binary"`
	FFmpegBinary string   `mapstructure:"ffmpeg_binary"`
	SearchDirs   []string `mapstructure:"search_dirs"` // extra dirs searched after the built-in ones
}

// FetchConfig contains retry and timeout policy for yt-dlp calls
type FetchConfig struct {
	Retries         int           `mapstructure:"retries"`
	MetadataTimeout time.Duration `mapstructure:"metadata_timeout"`
	ProbeTimeout    time.Duration `mapstructure:"probe_timeout"`
	DownloadRetries int           `mapstructure:"download_retries"`
}

// SelectionConfig contains format selection parameters
type SelectionConfig struct {
	SizeThreshold int64 `mapstructure:"size_threshold"` // bytes
	AvgSnapshotKB int64 `mapstructure:"avg_snapshot_kb"`
}

// DownloadConfig contains output layout configuration
type DownloadConfig struct {
	BaseDir        string `mapstructure:"base_dir"`
	LogsDir        string `mapstructure:"logs_dir"`
	TitleMaxLength int    `mapstructure:"title_max_length"`
	WriteSummary   bool   `mapstructure:"write_summary"`
}

// SnapshotConfig contains snapshot and document configuration
type SnapshotConfig struct {
	DefaultInterval int `mapstructure:"default_interval"` // 0 means ask
	JPEGQuality     int `mapstructure:"jpeg_quality"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultSizeThreshold is the size above which a compact variant is offered.
const DefaultSizeThreshold int64 = 5 * 1024 * 1024

// DefaultAvgSnapshotKB is the assumed average size of one snapshot page.
const DefaultAvgSnapshotKB int64 = 200

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	method := "notify-send"
	if runtime.GOOS == "darwin" {
		method = "osascript"
	}

	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Tools: ToolsConfig{
			YTDLPBinary:  "yt-dlp",
			FFmpegBinary: "ffmpeg",
		},
		Fetch: FetchConfig{
			Retries:         3,
			MetadataTimeout: 60 * time.Second,
			ProbeTimeout:    20 * time.Second,
			DownloadRetries: 10,
		},
		Selection: SelectionConfig{
			SizeThreshold: DefaultSizeThreshold,
			AvgSnapshotKB: DefaultAvgSnapshotKB,
		},
		Download: DownloadConfig{
			BaseDir:        "$HOME/Downloads",
			LogsDir:        "$HOME/.vid2pdf/logs",
			TitleMaxLength: 50,
			WriteSummary:   true,
		},
		Snapshot: SnapshotConfig{
			DefaultInterval: 0,
			JPEGQuality:     90,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  method,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
