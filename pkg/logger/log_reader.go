package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"time"
)

// ToolsLogPrefix names the per-day file that raw yt-dlp and ffmpeg output is appended to
const ToolsLogPrefix = "tools"

// ToolsLogPath returns the tools log path for a given day
func ToolsLogPath(logsDir string, date time.Time) string {
	return filepath.Join(logsDir, ToolsLogPrefix+"-"+date.Format("20060102")+".log")
}

// LogReader reads the per-day tools logs
type LogReader struct {
	logsDir string
}

// NewLogReader creates a new log reader
func NewLogReader(logsDir string) *LogReader {
	return &LogReader{
		logsDir: logsDir,
	}
}

// ReadLines returns the last limit lines of the tools log for date.
// A missing file yields an empty slice; limit <= 0 returns every line.
func (lr *LogReader) ReadLines(date time.Time, limit int) ([]string, error) {
	file, err := os.Open(ToolsLogPath(lr.logsDir, date))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	defer file.Close()

	lines := []string{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if limit > 0 && len(lines) > limit {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
