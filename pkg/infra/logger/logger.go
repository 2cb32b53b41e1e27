package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultLogDir = "logs"

type Options struct {
	// Level overrides LOG_LEVEL when set.
	Level string
	// FileDir enables the async file sink <FileDir>/<component>.log.
	FileDir string
	// Console mirrors every entry to stdout when the file sink is enabled.
	Console bool
}

// NewLogger builds the JSON logger used by every component. The returned
// closer flushes the file sink, if any.
func NewLogger(component string, opts Options) (*logrus.Logger, func()) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(resolveLevel(opts.Level))

	if opts.FileDir == "" {
		logger.SetOutput(os.Stdout)
		return logger, func() {}
	}

	writer, err := openFileSink(opts.FileDir, component)
	if err != nil {
		logger.SetOutput(os.Stdout)
		logger.WithError(err).Warn("file log sink unavailable, logging to stdout")
		return logger, func() {}
	}
	logger.SetOutput(writer)
	if opts.Console {
		logger.AddHook(NewConsoleHook(os.Stdout))
	}
	return logger, writer.Close
}

func resolveLevel(explicit string) logrus.Level {
	raw := explicit
	if raw == "" {
		raw = os.Getenv("LOG_LEVEL")
	}
	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func openFileSink(dir, component string) (*AsyncFileWriter, error) {
	if dir == "" {
		dir = defaultLogDir
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	name := filepath.Base(filepath.Clean(component))
	return NewAsyncFileWriter(filepath.Join(dir, name+".log"), 32*1024)
}

// Discard returns a logger that drops everything, for tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
