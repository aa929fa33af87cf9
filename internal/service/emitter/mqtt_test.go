package emitter

import (
	"io"
	"testing"

	"digitcam/internal/logger"
	"digitcam/internal/model"
)

func TestBrokerURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"localhost:1883", "tcp://localhost:1883"},
		{"tcp://broker:1883", "tcp://broker:1883"},
		{"ssl://broker:8883", "ssl://broker:8883"},
		{"ws://broker:9001/mqtt", "ws://broker:9001/mqtt"},
	}
	for _, tt := range tests {
		if got := brokerURL(tt.in); got != tt.want {
			t.Errorf("brokerURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMQTTEmitter_RecordWithoutConnectionFails(t *testing.T) {
	e := NewMQTTEmitter("localhost:1883", "test", "digits", logger.NewWithWriter(io.Discard))

	if err := e.Record(model.LogEntry{Result: "42"}); err == nil {
		t.Fatal("expected error when not connected")
	}
	stats := e.Stats()
	if stats.Connected || stats.Errors != 1 || stats.Published != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	// Disconnect without a client is a no-op.
	e.Disconnect()
}
