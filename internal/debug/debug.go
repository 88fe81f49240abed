// Package debug provides the opt-in debug log. When enabled, records go to
// ~/.formbuilder/debug.log, truncated on each launch; otherwise they are discarded.
package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	LogFileName = "debug.log"
	LogDirName  = ".formbuilder"
)

// Log is an open debug log. The zero value is not usable; call Open.
type Log struct {
	Path   string
	Logger *slog.Logger

	f io.Closer
}

// Open returns a discarding logger when enable is false. Otherwise it creates (or
// truncates) the log file at path, or at ~/.formbuilder/debug.log when path is empty.
func Open(enable bool, path string) (*Log, error) {
	if !enable {
		return &Log{Logger: slog.New(slog.DiscardHandler)}, nil
	}
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := &Log{
		Path:   path,
		Logger: slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})),
		f:      f,
	}
	l.Logger.Info("debug log started", "at", time.Now().Format(time.RFC3339))
	return l, nil
}

func (l *Log) Enabled() bool { return l != nil && l.f != nil }

// Close is safe to call on a disabled log and more than once.
func (l *Log) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(home, LogDirName, LogFileName), nil
}
