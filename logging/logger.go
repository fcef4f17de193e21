package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"rea_scraper/models"
)

// SinkFunc receives every emitted line, e.g. to persist warnings with the run.
type SinkFunc func(level models.LogLevel, source, message string)

// Logger writes "[level] source: message" lines with level filtering.
type Logger struct {
	out    *log.Logger
	min    models.LogLevel
	source string
	sink   SinkFunc
	closer io.Closer
}

func New(w io.Writer, source string, min models.LogLevel) *Logger {
	return &Logger{
		out:    log.New(w, "", log.LstdFlags),
		min:    min,
		source: source,
	}
}

// Default logs through the process-wide stdlib logger.
func Default(source string) *Logger {
	return New(log.Writer(), source, models.LogLevelInfo)
}

// NewRunLogger opens {dir}/{runName}.log and tees it with stdout.
func NewRunLogger(dir, runName, source string, min models.LogLevel) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	rw, err := NewRotatingWriter(filepath.Join(dir, runName+".log"))
	if err != nil {
		return nil, fmt.Errorf("open run log: %w", err)
	}
	l := New(io.MultiWriter(os.Stdout, rw), source, min)
	l.closer = rw
	return l, nil
}

// WithSink returns a logger that also hands lines to fn.
func (l *Logger) WithSink(fn SinkFunc) *Logger {
	cp := *l
	cp.sink = fn
	return &cp
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(models.LogLevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(models.LogLevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(models.LogLevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(models.LogLevelError, format, args...) }

func (l *Logger) logf(level models.LogLevel, format string, args ...any) {
	if l == nil || !level.Enabled(l.min) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.out.Printf("[%s] %s: %s", level, l.source, msg)
	if l.sink != nil {
		l.sink(level, l.source, msg)
	}
}

func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
