package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"digitcam/internal/logger"
	"digitcam/internal/model"
)

func TestConfigStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	store := NewConfigStore(path, logger.NewWithWriter(io.Discard))

	cfg := model.Configuration{
		{X: 10, Y: 20, Width: 30, Height: 40},
		{X: 50, Y: 20, Width: 30, Height: 40},
	}
	if err := store.Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := store.Load()
	if len(loaded) != len(cfg) {
		t.Fatalf("expected %d rectangles, got %d", len(cfg), len(loaded))
	}
	for i := range cfg {
		if loaded[i] != cfg[i] {
			t.Errorf("rectangle %d: got %+v, expected %+v", i, loaded[i], cfg[i])
		}
	}
}

func TestConfigStore_MissingOrMalformedYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	lg := logger.NewWithWriter(io.Discard)

	if cfg := NewConfigStore(filepath.Join(dir, "absent.json"), lg).Load(); len(cfg) != 0 {
		t.Errorf("missing file: expected empty config, got %v", cfg)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"rectangles": [{"x": 1,`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	cfg := NewConfigStore(bad, lg).Load()
	if cfg == nil || len(cfg) != 0 {
		t.Errorf("malformed file: expected non-nil empty config, got %v", cfg)
	}
}

func TestDecode_UploadedDocument(t *testing.T) {
	doc := []byte(`{"rectangles":[{"x":1,"y":2,"width":3,"height":4}]}`)

	cfg, err := Decode(doc)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(cfg) != 1 || cfg[0] != (model.Rectangle{X: 1, Y: 2, Width: 3, Height: 4}) {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := Decode([]byte(`{"rectangles":[{"x":-1}]}`)); err == nil {
		t.Error("expected error for negative coordinate")
	}
}
