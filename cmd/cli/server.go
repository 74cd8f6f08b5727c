package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/yourusername/vid2pdf-go/internal/infrastructure"
)

const (
	serverBinaryName   = "vid2pdf-server"
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
)

// isServerRunning checks if the server is responding to health checks
func isServerRunning() bool {
	client := &http.Client{Timeout: 1 * time.Second}
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// findServerBinary looks next to the CLI binary first, then where tools are searched
func findServerBinary() (string, error) {
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), serverBinaryName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	locator := infrastructure.NewToolLocatorWith(infrastructure.DefaultToolDirs(), nil, nil)
	path, err := locator.Locate(serverBinaryName)
	if err != nil {
		return "", fmt.Errorf("%s binary not found", serverBinaryName)
	}
	return path, nil
}

// startServerBackground starts the server as a detached background process
func startServerBackground() error {
	serverPath, err := findServerBinary()
	if err != nil {
		return err
	}

	var args []string
	if configPath != "" {
		args = append(args, "-config", configPath)
	}
	cmd := exec.Command(serverPath, args...)

	// Detach from parent process
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// Reap the child if it exits while we are still running
	go func() {
		cmd.Wait()
	}()

	return nil
}

// waitForServerReady polls the health endpoint until it answers or ctx expires
func waitForServerReady(ctx context.Context) error {
	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()

	for {
		if isServerRunning() {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not start within %v", serverStartTimeout)
		case <-ticker.C:
		}
	}
}

// ensureServerRunning checks if server is running, starts it if not
func ensureServerRunning() error {
	if isServerRunning() {
		return nil
	}

	if err := startServerBackground(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), serverStartTimeout)
	defer cancel()

	spinner := infrastructure.NewSpinner(os.Stderr)
	return spinner.Track(ctx, "Starting server", waitForServerReady)
}
