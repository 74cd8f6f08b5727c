package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/yourusername/vid2pdf-go/internal/app"
	"github.com/yourusername/vid2pdf-go/internal/domain"
	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
	"github.com/yourusername/vid2pdf-go/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Download a video and turn it into a PDF of screenshots",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, log := loadEnvironment()
		defer log.Sync()

		interval, _ := cmd.Flags().GetInt("interval")
		choice, _ := cmd.Flags().GetString("choice")
		yes, _ := cmd.Flags().GetBool("yes")

		stdin := bufio.NewReader(os.Stdin)
		if !cmd.Flags().Changed("interval") {
			interval = config.Snapshot.DefaultInterval
		}
		if interval <= 0 && !cmd.Flags().Changed("interval") {
			var err error
			if interval, err = promptInterval(stdin, os.Stdout); err != nil {
				exitWithError(err)
			}
		}

		chooser, err := chooserFor(choice, yes, stdin, os.Stdout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		comps := app.NewComponents(config, infrastructure.NewSpinner(os.Stderr), log)
		run := domain.NewPipelineRun(args[0], interval)
		if err := comps.Pipeline.Execute(ctx, run, chooser); err != nil {
			exitWithError(err)
		}
		printRunResult(os.Stdout, run)
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats [url]",
	Short: "Show the download options for a video without downloading it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config, log := loadEnvironment()
		defer log.Sync()

		interval, _ := cmd.Flags().GetInt("interval")
		if interval <= 0 {
			interval = config.Snapshot.DefaultInterval
		}

		comps := app.NewComponents(config, infrastructure.NewSpinner(os.Stderr), log)
		meta, err := comps.Metadata.FetchMetadata(context.Background(), args[0])
		if err != nil {
			exitWithError(err)
		}

		sel := comps.Selector.Select(meta.Formats, meta.Duration, interval)
		fmt.Printf("%s\n", meta.Title)
		fmt.Printf("  Uploader: %s\n", meta.Uploader)
		fmt.Printf("  Duration: %s\n", infrastructure.FormatDuration(meta.Duration))
		fmt.Printf("  Formats:  %s offered\n", humanize.Comma(int64(len(meta.Formats))))
		if len(sel.Options) == 0 {
			exitWithError(domain.ErrNoDownloadableFormat)
		}
		fmt.Println(renderOptions(sel))
		if sel.CompactUnavailable {
			fmt.Println("No smaller variant is available.")
		}
	},
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that yt-dlp and ffmpeg can be found",
	Run: func(cmd *cobra.Command, args []string) {
		config, log := loadEnvironment()
		defer log.Sync()

		comps := app.NewComponents(config, nil, log)
		missing := false
		for _, tool := range comps.CheckTools() {
			if tool.Err != nil {
				missing = true
				fmt.Printf("  %-8s NOT FOUND\n", tool.Name)
				continue
			}
			fmt.Printf("  %-8s %s\n", tool.Name, tool.Path)
		}
		fmt.Printf("\nOutput:    %s\n", config.Download.BaseDir)
		fmt.Printf("Tools log: %s\n", logger.ToolsLogPath(config.Download.LogsDir, time.Now()))
		fmt.Printf("Run lock:  %s\n", comps.Lock.Path())

		if missing {
			exitWithError(domain.ErrToolNotFound)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default values",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := defaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
			os.Exit(1)
		}
		if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config written to %s\n", path)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vid2pdf %s\n", version)
	},
}

func init() {
	runCmd.Flags().IntP("interval", "i", 0, "Seconds between screenshots (prompted when omitted)")
	runCmd.Flags().StringP("choice", "c", "", "Pick a variant without the menu (original, compact)")
	runCmd.Flags().BoolP("yes", "y", false, "Accept the original variant without asking")
	formatsCmd.Flags().IntP("interval", "i", 0, "Seconds between screenshots, used for the PDF size estimate")
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}

// chooserFor picks how the run resolves a two-option selection
func chooserFor(choice string, yes bool, in *bufio.Reader, out io.Writer) (domain.Chooser, error) {
	if choice != "" {
		category, err := app.ParseCategory(choice)
		if err != nil {
			return nil, err
		}
		return app.AutoChooser{Category: category}, nil
	}
	if yes {
		return app.AutoChooser{Category: domain.CategoryOriginal}, nil
	}
	return NewMenuChooser(in, out), nil
}

func printRunResult(w io.Writer, run *domain.PipelineRun) {
	fmt.Fprintf(w, "PDF created: %s\n", run.DocumentPath)
	fmt.Fprintf(w, "  Video:       %s\n", run.VideoPath)
	fmt.Fprintf(w, "  Screenshots: %s\n", run.SnapshotDir)
	if run.SummaryPath != "" {
		fmt.Fprintf(w, "  Summary:     %s\n", run.SummaryPath)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("configs", "config.yaml")
	}
	return filepath.Join(home, ".vid2pdf", "config.yaml")
}
