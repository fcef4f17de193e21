package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultMaxSize = 2 * 1024 * 1024 // 2MB
	defaultBackups = 1
)

// RotatingWriter appends to a file and shifts it to path.1 .. path.N once it
// outgrows maxSize.
type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
	backups int
}

type WriterOption func(*RotatingWriter)

func WithMaxSize(n int64) WriterOption {
	return func(w *RotatingWriter) { w.maxSize = n }
}

func WithBackups(n int) WriterOption {
	return func(w *RotatingWriter) { w.backups = n }
}

// Setup sends the process-wide stdlib logger to stdout and logPath.
func Setup(logPath string) (*RotatingWriter, error) {
	rw, err := NewRotatingWriter(logPath)
	if err != nil {
		return nil, err
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(io.MultiWriter(os.Stdout, rw))
	return rw, nil
}

func NewRotatingWriter(logPath string, opts ...WriterOption) (*RotatingWriter, error) {
	w := &RotatingWriter{path: logPath, maxSize: defaultMaxSize, backups: defaultBackups}
	for _, opt := range opts {
		opt(w)
	}

	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	w.file = f
	if info, err := f.Stat(); err == nil {
		w.size = info.Size()
	}

	// A file left oversized by a previous process rotates right away.
	if w.size > w.maxSize {
		w.rotate()
	}
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}
	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()

	if w.backups <= 0 {
		os.Remove(w.path)
	}
	for i := w.backups; i > 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", w.path, i-1), fmt.Sprintf("%s.%d", w.path, i))
	}
	if w.backups > 0 {
		os.Rename(w.path, w.path+".1")
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}
	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}
