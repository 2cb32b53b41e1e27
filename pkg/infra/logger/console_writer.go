package logger

import (
	"io"
	"sync"

	"github.com/sirupsen/logrus"
)

// ConsoleHook mirrors formatted entries to a second writer.
type ConsoleHook struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleHook(out io.Writer) *ConsoleHook {
	return &ConsoleHook{out: out}
}

func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}

func (h *ConsoleHook) Levels() []logrus.Level {
	return logrus.AllLevels
}
