package logger

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const flushInterval = 2 * time.Second

// AsyncFileWriter buffers log lines on a channel and writes them from a
// single goroutine. Lines are dropped, and counted, when the channel is full.
type AsyncFileWriter struct {
	file    *os.File
	writer  *bufio.Writer
	lines   chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Int64
}

func NewAsyncFileWriter(path string, bufferSize int) (*AsyncFileWriter, error) {
	file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, err
	}
	w := &AsyncFileWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, bufferSize),
		lines:  make(chan []byte, 1024),
		done:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *AsyncFileWriter) Write(p []byte) (int, error) {
	line := append([]byte(nil), p...)
	select {
	case w.lines <- line:
	default:
		w.dropped.Add(1)
	}
	return len(p), nil
}

// Dropped is the number of lines discarded because the buffer was full.
func (w *AsyncFileWriter) Dropped() int64 {
	return w.dropped.Load()
}

func (w *AsyncFileWriter) loop() {
	defer w.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case line := <-w.lines:
			_, _ = w.writer.Write(line)
		case <-ticker.C:
			_ = w.writer.Flush()
		case <-w.done:
			for {
				select {
				case line := <-w.lines:
					_, _ = w.writer.Write(line)
				default:
					_ = w.writer.Flush()
					return
				}
			}
		}
	}
}

// Close drains pending lines, flushes and closes the file.
func (w *AsyncFileWriter) Close() {
	w.once.Do(func() {
		close(w.done)
		w.wg.Wait()
		_ = w.file.Close()
	})
}
