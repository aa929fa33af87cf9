package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResultLog_AppendWritesLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "log.txt")
	log := NewResultLog(path)

	if err := log.Append("2026-01-02T03:04:05Z", "123"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := log.Append("2026-01-02T03:05:05Z", ""); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	expected := "[2026-01-02T03:04:05Z] 123\n[2026-01-02T03:05:05Z] \n"
	if string(data) != expected {
		t.Errorf("log content = %q, expected %q", data, expected)
	}
}

func TestResultLog_Reset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	log := NewResultLog(path)

	if err := log.Append("t", "42"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := log.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty log after reset, got %d bytes", info.Size())
	}

	if err := log.Append("t2", "7"); err != nil {
		t.Fatalf("Append after reset failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "[t2] 7\n" {
		t.Errorf("log content = %q", data)
	}
}

func TestResultLog_OpenFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes the open fail.
	path := filepath.Join(dir, "log.txt")
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	if err := NewResultLog(path).Append("t", "1"); err == nil {
		t.Error("expected error when the log path is a directory")
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line      string
		timestamp string
		result    string
		wantErr   bool
	}{
		{"[2026-01-02T03:04:05Z] 123\n", "2026-01-02T03:04:05Z", "123", false},
		{"[2026-01-02T03:04:05Z] \n", "2026-01-02T03:04:05Z", "", false},
		{"[2026-01-02T03:04:05Z]", "2026-01-02T03:04:05Z", "", false},
		{"2026-01-02 123", "", "", true},
		{"[unterminated 123", "", "", true},
	}

	for _, tt := range tests {
		ts, result, err := ParseLine(tt.line)
		if tt.wantErr {
			if !errors.Is(err, ErrMalformedLine) {
				t.Errorf("ParseLine(%q): expected ErrMalformedLine, got %v", tt.line, err)
			}
			continue
		}
		if err != nil || ts != tt.timestamp || result != tt.result {
			t.Errorf("ParseLine(%q) = %q, %q, %v", tt.line, ts, result, err)
		}
	}
}
