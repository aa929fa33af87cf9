package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"digitcam/internal/logger"
	"digitcam/internal/model"
	"digitcam/internal/repository"
)

const (
	// HistoryBufferLimit caps how many entries wait in memory between flushes.
	HistoryBufferLimit = 100
	// HistoryFlushInterval defines how often buffered entries are written to the database.
	HistoryFlushInterval = 30 * time.Second
)

// BufferService collects result entries in memory and periodically flushes
// them to the result repository in one transaction.
type BufferService struct {
	entries  []model.LogEntry
	dropped  int
	limit    int
	interval time.Duration
	mu       sync.Mutex
	logger   *logger.Logger
	repo     repository.ResultRepository
}

// NewBufferService creates a BufferService that flushes into repo.
func NewBufferService(repo repository.ResultRepository, logger *logger.Logger) *BufferService {
	return &BufferService{
		entries:  make([]model.LogEntry, 0, HistoryBufferLimit),
		limit:    HistoryBufferLimit,
		interval: HistoryFlushInterval,
		logger:   logger,
		repo:     repo,
	}
}

// Run starts a ticker loop that periodically flushes entries, and flushes
// once more when ctx ends.
func (s *BufferService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Flush()
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}

// Record appends an entry to the buffer; entries beyond the limit are counted
// and discarded until the next flush.
func (s *BufferService) Record(entry model.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) >= s.limit {
		s.dropped++
		return nil
	}
	s.entries = append(s.entries, entry)
	return nil
}

// Pending returns the number of buffered entries.
func (s *BufferService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Flush writes buffered entries to the repository and resets the buffer.
// On failure the entries stay buffered for the next tick.
func (s *BufferService) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return
	}

	if err := s.repo.InsertBatch(s.entries); err != nil {
		s.logger.Error("Error saving results to database: %v", err)
		return
	}

	if s.dropped > 0 {
		s.logger.Warning("History buffer full, %d result(s) not stored", s.dropped)
	}
	s.logger.Debug("Flushed %d results to database", len(s.entries))
	s.entries = s.entries[:0]
	s.dropped = 0
}

// Clear discards buffered entries without touching the repository.
func (s *BufferService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
	s.dropped = 0
}

// Reset discards buffered entries and deletes the stored history.
func (s *BufferService) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
	s.dropped = 0
	if err := s.repo.DeleteAll(); err != nil {
		return fmt.Errorf("failed to clear result history: %w", err)
	}
	return nil
}
