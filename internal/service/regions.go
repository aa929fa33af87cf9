package service

import (
	"fmt"
	"sync"
	"sync/atomic"

	"digitcam/internal/logger"
	"digitcam/internal/model"
)

// ConfigSaver persists a configuration.
type ConfigSaver interface {
	Save(cfg model.Configuration) error
}

// RegionSet holds the active rectangle list as an immutable snapshot behind an
// atomic pointer. A batch that already read the snapshot keeps using it while
// an update installs the next one.
type RegionSet struct {
	current     atomic.Pointer[model.Configuration]
	saver       ConfigSaver
	frameWidth  int
	frameHeight int
	mu          sync.Mutex // orders concurrent updates so store and memory agree
}

// NewRegionSet starts from initial. frameWidth/frameHeight bound rectangles
// when both are known; pass 0 to skip the bounds check. An initial
// configuration that fails validation is logged and replaced by an empty one.
func NewRegionSet(initial model.Configuration, saver ConfigSaver, frameWidth, frameHeight int,
	logger *logger.Logger) *RegionSet {
	rs := &RegionSet{saver: saver, frameWidth: frameWidth, frameHeight: frameHeight}

	snapshot := initial.Clone()
	if err := snapshot.Validate(frameWidth, frameHeight); err != nil {
		logger.Error("Stored config rejected, starting with no rectangles: %v", err)
		snapshot = model.Configuration{}
	}
	rs.current.Store(&snapshot)
	return rs
}

// Current returns the active snapshot. Callers must not modify it.
func (r *RegionSet) Current() model.Configuration {
	return *r.current.Load()
}

// Update validates cfg, persists it and then makes it the active snapshot.
// A failed save leaves the active snapshot unchanged.
func (r *RegionSet) Update(cfg model.Configuration) error {
	if err := cfg.Validate(r.frameWidth, r.frameHeight); err != nil {
		return err
	}
	snapshot := cfg.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saver != nil {
		if err := r.saver.Save(snapshot); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	r.current.Store(&snapshot)
	return nil
}
