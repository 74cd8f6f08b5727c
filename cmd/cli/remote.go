package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

var submitCmd = &cobra.Command{
	Use:   "submit [url]",
	Short: "Start a run on the server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetInt("interval")
		choice, _ := cmd.Flags().GetString("choice")
		follow, _ := cmd.Flags().GetBool("follow")

		ensureServer()

		payload := map[string]interface{}{
			"url":      args[0],
			"interval": interval,
		}
		if choice != "" {
			payload["choice"] = choice
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/runs", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusAccepted {
			fmt.Fprintf(os.Stderr, "Error: %s\n", apiError(body))
			os.Exit(1)
		}

		var result map[string]interface{}
		json.Unmarshal(body, &result)
		id, _ := result["id"].(string)
		fmt.Printf("Run started!\n")
		fmt.Printf("ID: %s\n", id)

		if follow {
			run, err := followRun(os.Stdout, id)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if run.State == domain.StateFailed {
				os.Exit(1)
			}
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show the state of a run on the server",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/runs/" + url.PathEscape(args[0]))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", apiError(body))
			os.Exit(1)
		}

		var run domain.PipelineRun
		if err := json.Unmarshal(body, &run); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid response: %v\n", err)
			os.Exit(1)
		}
		printRunStatus(os.Stdout, run)
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the server's tools log",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		date, _ := cmd.Flags().GetString("date")
		limit, _ := cmd.Flags().GetInt("limit")

		query := url.Values{}
		query.Set("limit", fmt.Sprint(limit))
		if date != "" {
			query.Set("date", date)
		}

		resp, err := http.Get(serverURL + "/api/v1/logs/tools?" + query.Encode())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", apiError(body))
			os.Exit(1)
		}

		var result struct {
			Lines []string `json:"lines"`
		}
		json.Unmarshal(body, &result)
		for _, line := range result.Lines {
			fmt.Println(line)
		}
	},
}

func init() {
	submitCmd.Flags().IntP("interval", "i", 10, "Seconds between screenshots")
	submitCmd.Flags().StringP("choice", "c", "", "Variant to download (original, compact)")
	submitCmd.Flags().BoolP("follow", "f", false, "Stream state changes until the run ends")
	logsCmd.Flags().StringP("date", "d", "", "Day to show (YYYY-MM-DD, default today)")
	logsCmd.Flags().IntP("limit", "n", 200, "Number of lines to show")
}

// followRun prints state changes streamed by the server and returns the final snapshot
func followRun(w io.Writer, id string) (domain.PipelineRun, error) {
	var last domain.PipelineRun

	wsURL, err := eventsURL(serverURL, id)
	if err != nil {
		return last, err
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return last, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}
	defer conn.Close()

	for {
		var run domain.PipelineRun
		if err := conn.ReadJSON(&run); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && last.IsTerminal() {
				return last, nil
			}
			return last, fmt.Errorf("event stream ended: %w", err)
		}
		if run.State != last.State {
			fmt.Fprintf(w, "  %s\n", run.State)
		}
		last = run
		if run.IsTerminal() {
			printRunStatus(w, run)
		}
	}
}

// eventsURL converts the server URL to the WebSocket URL of a run's event stream
func eventsURL(base, id string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", errors.New("server URL must start with http:// or https://")
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/runs/" + url.PathEscape(id) + "/events"
	return u.String(), nil
}

func printRunStatus(w io.Writer, run domain.PipelineRun) {
	fmt.Fprintf(w, "ID:       %s\n", run.ID)
	fmt.Fprintf(w, "URL:      %s\n", run.URL)
	fmt.Fprintf(w, "State:    %s\n", run.State)
	if run.Metadata != nil {
		fmt.Fprintf(w, "Title:    %s\n", truncate(run.Metadata.Title, 60))
	}
	if run.Choice != nil {
		fmt.Fprintf(w, "Variant:  %s (%s, %s)\n", run.Choice.Category, run.Choice.Resolution, run.Choice.SizeLabel)
	}
	if run.DocumentPath != "" {
		fmt.Fprintf(w, "PDF:      %s\n", run.DocumentPath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(w, "Error:    %s\n", run.ErrorMessage)
	}
}

// apiError extracts the message from an error response body
func apiError(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" && payload.Message != payload.Error {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
