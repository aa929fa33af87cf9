package storage

import (
	"errors"
	"io"
	"sync"
	"testing"

	"digitcam/internal/logger"
	"digitcam/internal/model"
)

type memoryRepo struct {
	mu      sync.Mutex
	stored  []model.LogEntry
	failing bool
}

func (r *memoryRepo) Insert(e *model.LogEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, *e)
	return int64(len(r.stored)), nil
}

func (r *memoryRepo) InsertBatch(entries []model.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("disk full")
	}
	r.stored = append(r.stored, entries...)
	return nil
}

func (r *memoryRepo) GetAll(*model.ResultFilter) ([]model.LogEntry, error) { return r.stored, nil }
func (r *memoryRepo) GetTotalCount(*model.ResultFilter) (int, error)       { return len(r.stored), nil }

func (r *memoryRepo) DeleteAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = nil
	return nil
}

func TestBufferService_FlushWritesBatch(t *testing.T) {
	repo := &memoryRepo{}
	buf := NewBufferService(repo, logger.NewWithWriter(io.Discard))

	for _, r := range []string{"1", "22", "333"} {
		buf.Record(model.LogEntry{Result: r, Source: model.SourceBackground})
	}
	if buf.Pending() != 3 {
		t.Fatalf("expected 3 pending, got %d", buf.Pending())
	}

	buf.Flush()

	if buf.Pending() != 0 {
		t.Errorf("expected empty buffer after flush, got %d", buf.Pending())
	}
	if len(repo.stored) != 3 || repo.stored[2].Result != "333" {
		t.Errorf("unexpected stored entries: %+v", repo.stored)
	}
}

func TestBufferService_KeepsEntriesOnFailure(t *testing.T) {
	repo := &memoryRepo{failing: true}
	buf := NewBufferService(repo, logger.NewWithWriter(io.Discard))

	buf.Record(model.LogEntry{Result: "9"})
	buf.Flush()

	if buf.Pending() != 1 {
		t.Errorf("expected entry to stay buffered, got %d pending", buf.Pending())
	}

	repo.failing = false
	buf.Flush()
	if len(repo.stored) != 1 {
		t.Errorf("expected 1 stored entry after retry, got %d", len(repo.stored))
	}
}

func TestBufferService_Limit(t *testing.T) {
	buf := NewBufferService(&memoryRepo{}, logger.NewWithWriter(io.Discard))

	for i := 0; i < HistoryBufferLimit+5; i++ {
		buf.Record(model.LogEntry{Result: "0"})
	}
	if buf.Pending() != HistoryBufferLimit {
		t.Errorf("expected %d pending, got %d", HistoryBufferLimit, buf.Pending())
	}

	buf.Clear()
	if buf.Pending() != 0 {
		t.Errorf("expected empty buffer after Clear, got %d", buf.Pending())
	}
}

func TestBufferService_ResetClearsBufferAndRepository(t *testing.T) {
	repo := &memoryRepo{}
	buf := NewBufferService(repo, logger.NewWithWriter(io.Discard))

	buf.Record(model.LogEntry{Result: "4"})
	buf.Flush()
	buf.Record(model.LogEntry{Result: "5"})

	if err := buf.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if buf.Pending() != 0 {
		t.Errorf("expected empty buffer, got %d", buf.Pending())
	}
	if len(repo.stored) != 0 {
		t.Errorf("expected empty repository, got %+v", repo.stored)
	}
}
