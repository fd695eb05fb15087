// Package logview replays and follows the per-process log files the
// supervisor writes. It is read-only with respect to the process registry.
package logview

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
)

const (
	stdoutTag = "[STDOUT] "
	stderrTag = "[STDERR] "
)

var stderrStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

// LatestLogFile returns the newest log file for repo in logDir, picked by the
// epoch-millis timestamp embedded in the filename
// (<repo>-<command>-<millis>.log).
func LatestLogFile(logDir, repo string) (string, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return "", fmt.Errorf("reading log directory: %w", err)
	}

	var best string
	var bestTS int64 = -1
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		fileRepo, ts, ok := parseLogName(name)
		if !ok || fileRepo != repo {
			continue
		}
		if ts > bestTS {
			bestTS = ts
			best = name
		}
	}
	if best == "" {
		return "", fmt.Errorf("no log files for repository %q in %s", repo, logDir)
	}
	return filepath.Join(logDir, best), nil
}

// parseLogName splits <repo>-<command>-<millis>.log from the right, so repo
// names containing hyphens compare exactly rather than by prefix.
func parseLogName(name string) (repo string, ts int64, ok bool) {
	trimmed, found := strings.CutSuffix(name, ".log")
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(trimmed, "-")
	if idx < 0 {
		return "", 0, false
	}
	ts, err := strconv.ParseInt(trimmed[idx+1:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	rest := trimmed[:idx]
	idx = strings.LastIndex(rest, "-")
	if idx < 0 {
		return "", 0, false
	}
	return rest[:idx], ts, true
}

// FormatLine strips the stream tag and colors stderr lines.
func FormatLine(line string) string {
	switch {
	case strings.HasPrefix(line, stdoutTag):
		return strings.TrimPrefix(line, stdoutTag)
	case strings.HasPrefix(line, stderrTag):
		return stderrStyle.Render(strings.TrimPrefix(line, stderrTag))
	default:
		return line
	}
}

// Show prints the most recent log for repo to out. With follow it keeps
// tailing the file until ctx is canceled; the tail runs in-process, so
// interruption leaves nothing behind.
func Show(ctx context.Context, logDir, repo string, follow bool, out io.Writer) error {
	path, err := LatestLogFile(logDir, repo)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer file.Close()

	rest, err := printLines(file, out)
	if err != nil {
		return err
	}
	if !follow {
		return nil
	}
	return tail(ctx, file, rest, out)
}

// printLines writes every complete line from r, formatted, and returns any
// trailing partial line for the follow path to finish later.
func printLines(r io.Reader, out io.Writer) (string, error) {
	reader := bufio.NewReader(r)
	var partial string
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			partial = line
			return partial, nil
		}
		if err != nil {
			return "", err
		}
		fmt.Fprintln(out, FormatLine(strings.TrimRight(line, "\n")))
	}
}

// tail watches the open file for writes and prints new complete lines.
func tail(ctx context.Context, file *os.File, partial string, out io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(file.Name()); err != nil {
		return fmt.Errorf("watching log file: %w", err)
	}

	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			for {
				n, err := file.Read(buf)
				if n > 0 {
					partial = emitChunk(partial+string(buf[:n]), out)
				}
				if err != nil {
					break
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching log file: %w", err)
		}
	}
}

// emitChunk prints the complete lines in data and returns the leftover
// partial line.
func emitChunk(data string, out io.Writer) string {
	for {
		idx := strings.IndexByte(data, '\n')
		if idx < 0 {
			return data
		}
		fmt.Fprintln(out, FormatLine(data[:idx]))
		data = data[idx+1:]
	}
}
