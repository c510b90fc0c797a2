// Package logging builds the process logger from config.Log.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"ingest/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Rotation limits for LOG_FILE.
const (
	maxSizeMB  = 100
	maxBackups = 5
	maxAgeDays = 14
)

// New returns a logger configured from cfg, plus a close function that
// releases the log file when one is used. An unknown level falls back to
// info; an unknown format falls back to text.
func New(cfg config.Log, stderr io.Writer) (*logrus.Logger, func() error, error) {
	logger := logrus.New()
	logger.SetOutput(stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
		defer logger.Warnf("logging: invalid level %q, using info", cfg.Level)
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: timestampFormat,
			FullTimestamp:   true,
		})
	}

	closeFn := func() error { return nil }
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		// Warnings and above still reach stderr so operators see them.
		logger.SetOutput(lj)
		logger.AddHook(&stderrHook{w: stderr, formatter: logger.Formatter})
		closeFn = lj.Close
	}
	return logger, closeFn, nil
}

// stderrHook mirrors warning-and-above entries to w.
type stderrHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *stderrHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *stderrHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	_, err = h.w.Write(b)
	return err
}
