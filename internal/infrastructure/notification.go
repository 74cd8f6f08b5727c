package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

const notifyTimeout = 5 * time.Second

// NotificationService sends desktop notifications about finished runs
type NotificationService struct {
	config domain.NotificationConfig
	runner CommandRunner
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(config domain.NotificationConfig, runner CommandRunner, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Send sends a notification. Delivery failures are logged and returned but
// never affect a run's outcome.
func (n *NotificationService) Send(ctx context.Context, title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var cmd Command
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(message), escapeAppleScript(title))
		cmd = NewCommand("osascript", "-e", script)
	case "notify-send":
		cmd = NewCommand("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()

	if _, err := n.runner.Run(ctx, cmd); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyRunCompleted sends notification when a document has been written
func (n *NotificationService) NotifyRunCompleted(ctx context.Context, title string) {
	message := fmt.Sprintf("PDF ready: %s", truncateString(title, 40))
	_ = n.Send(ctx, "vid2pdf", message)
}

// NotifyRunFailed sends notification when a run aborts
func (n *NotificationService) NotifyRunFailed(ctx context.Context, url string, err error) {
	message := fmt.Sprintf("Failed: %s (%s)", truncateString(url, 30), domain.UserMessage(err))
	_ = n.Send(ctx, "vid2pdf", message)
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// truncateString truncates a string to the specified number of runes
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
