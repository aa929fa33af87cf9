package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ResultLog is the append-only text log of classification passes, one
// "[timestamp] digits" line per pass.
type ResultLog struct {
	path string
	mu   sync.Mutex // serializes Append against Reset from the HTTP side
}

// NewResultLog creates a ResultLog at path. The file is created on first append.
func NewResultLog(path string) *ResultLog {
	return &ResultLog{path: path}
}

// Path returns the log file location.
func (l *ResultLog) Path() string {
	return l.path
}

// Append opens the log in append mode, writes one line and closes it. When the
// file cannot be opened the entry is lost and the error returned.
func (l *ResultLog) Append(timestamp, result string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}

	if _, err := fmt.Fprintf(file, "[%s] %s\n", timestamp, result); err != nil {
		file.Close()
		return fmt.Errorf("failed to write log: %w", err)
	}
	return file.Close()
}

// Reset truncates the log, creating it when missing.
func (l *ResultLog) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	return file.Close()
}

// ErrMalformedLine is returned by ParseLine for text that is not a log line.
var ErrMalformedLine = errors.New("malformed log line")

// ParseLine splits one "[timestamp] digits" line as written by Append.
func ParseLine(line string) (timestamp, result string, err error) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.HasPrefix(line, "[") {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		// An empty configuration logs "[timestamp] " which may lose its trailing space.
		if strings.HasSuffix(line, "]") {
			return line[1 : len(line)-1], "", nil
		}
		return "", "", fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}
	return line[1:end], line[end+2:], nil
}
