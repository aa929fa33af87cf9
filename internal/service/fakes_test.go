package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"digitcam/internal/logger"
	"digitcam/internal/model"
	"digitcam/internal/service/camera"
)

var errEngine = errors.New("engine exploded")

// fakeSource hands out copies of one fixed frame and counts acquire/release.
type fakeSource struct {
	mu       sync.Mutex
	pix      []byte
	width    int
	height   int
	err      error
	acquired int
	released int
}

func newFakeSource(width, height int, fill func(x, y int) byte) *fakeSource {
	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pix[y*width+x] = fill(x, y)
		}
	}
	return &fakeSource{pix: pix, width: width, height: height}
}

func (s *fakeSource) Acquire(context.Context) (*camera.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.acquired++
	return &camera.Frame{Pix: append([]byte(nil), s.pix...), Width: s.width, Height: s.height}, nil
}

func (s *fakeSource) Release(*camera.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
}

func (s *fakeSource) Close() error { return nil }

func (s *fakeSource) counts() (acquired, released int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired, s.released
}

// fakeClassifier returns digits[i % len(digits)] for call i and keeps a copy
// of every canvas it was given. failAt makes that call (1-based) fail.
type fakeClassifier struct {
	mu       sync.Mutex
	digits   []int
	failAt   int
	canvases [][]byte
}

func (c *fakeClassifier) Classify(canvas []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.canvases = append(c.canvases, append([]byte(nil), canvas...))
	call := len(c.canvases)
	if c.failAt == call {
		return 0, errEngine
	}
	if len(c.digits) == 0 {
		return 0, nil
	}
	return c.digits[(call-1)%len(c.digits)], nil
}

func (c *fakeClassifier) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.canvases)
}

// memoryRecorder keeps recorded entries.
type memoryRecorder struct {
	mu      sync.Mutex
	entries []model.LogEntry
	err     error
}

func (r *memoryRecorder) Record(entry model.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *memoryRecorder) recorded() []model.LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.LogEntry(nil), r.entries...)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testLogger() *logger.Logger {
	return logger.NewWithWriter(io.Discard)
}

func uniform(v byte) func(x, y int) byte {
	return func(int, int) byte { return v }
}

func allEqual(b []byte, v byte) bool {
	for _, p := range b {
		if p != v {
			return false
		}
	}
	return true
}
