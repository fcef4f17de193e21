package models

import (
	"strings"
	"time"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelRank = map[LogLevel]int{
	LogLevelDebug: 0,
	LogLevelInfo:  1,
	LogLevelWarn:  2,
	LogLevelError: 3,
}

// ParseLogLevel falls back to info for unknown names.
func ParseLogLevel(s string) LogLevel {
	l := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := logLevelRank[l]; ok {
		return l
	}
	return LogLevelInfo
}

// Enabled reports whether a message at l passes the min threshold.
func (l LogLevel) Enabled(min LogLevel) bool {
	return logLevelRank[l] >= logLevelRank[min]
}

// RunLog is a warning or error kept in the run history next to its run.
type RunLog struct {
	ID        int64     `json:"id" db:"id"`
	RunName   string    `json:"run_name" db:"run_name"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Level     LogLevel  `json:"level" db:"level"`
	Source    string    `json:"source" db:"source"`
	Message   string    `json:"message" db:"message"`
}
