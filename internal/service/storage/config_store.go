package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"digitcam/internal/logger"
	"digitcam/internal/model"
)

// ConfigStore persists the rectangle list as {"rectangles":[...]} JSON.
type ConfigStore struct {
	path   string
	logger *logger.Logger
}

// NewConfigStore creates a store backed by the file at path.
func NewConfigStore(path string, logger *logger.Logger) *ConfigStore {
	return &ConfigStore{path: path, logger: logger}
}

// Load reads the stored configuration. Missing or malformed data yields an
// empty configuration; the cause is logged, never returned.
func (s *ConfigStore) Load() model.Configuration {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warning("No region config at %s, starting with none", s.path)
		} else {
			s.logger.Error("Failed to open region config %s: %v", s.path, err)
		}
		return model.Configuration{}
	}

	cfg, err := Decode(data)
	if err != nil {
		s.logger.Error("Failed to parse region config %s: %v", s.path, err)
		return model.Configuration{}
	}
	return cfg
}

// Save writes cfg through a temporary file and rename so a crash never leaves
// a half-written config behind.
func (s *ConfigStore) Save(cfg model.Configuration) error {
	data, err := json.MarshalIndent(model.ConfigDocument{Rectangles: cfg.Clone()}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to open file in writing mode: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace config: %w", err)
	}
	return nil
}

// Decode parses an uploaded or stored config document.
func Decode(data []byte) (model.Configuration, error) {
	var doc model.ConfigDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return model.Configuration(doc.Rectangles).Clone(), nil
}
