package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"digitcam/internal/logger"
	"digitcam/internal/model"
	"digitcam/internal/service/camera"

	"github.com/sirupsen/logrus"
)

// Recorder stores a completed pass.
type Recorder interface {
	Record(entry model.LogEntry) error
}

// SchedulerStats is a snapshot of the scheduler counters.
type SchedulerStats struct {
	Running            bool   `json:"running"`
	ForegroundAccepted uint64 `json:"foreground_accepted"`
	ForegroundDropped  uint64 `json:"foreground_dropped"`
	BackgroundAccepted uint64 `json:"background_accepted"`
	BackgroundDropped  uint64 `json:"background_dropped"`
	Passes             uint64 `json:"passes"`
	Failures           uint64 `json:"failures"`
	Abandoned          uint64 `json:"abandoned"`
	Regions            int    `json:"regions"`
}

// Scheduler serializes every use of the camera and the classifier. Requests
// arrive on two single-slot queues and a single dispatch loop drains them,
// foreground first. Only the goroutine running Run/DispatchOnce touches the
// frame source and the batch classifier.
type Scheduler struct {
	foreground chan *Request
	background chan struct{}

	source   camera.Source
	batch    *BatchClassifier
	regions  *RegionSet
	recorder Recorder
	clock    Clock
	logger   *logger.Logger

	queueTimeout time.Duration
	period       time.Duration

	running    atomic.Bool
	generation atomic.Uint64
	closed     chan struct{}
	closeOnce  sync.Once

	foregroundAccepted atomic.Uint64
	foregroundDropped  atomic.Uint64
	backgroundAccepted atomic.Uint64
	backgroundDropped  atomic.Uint64
	passes             atomic.Uint64
	failures           atomic.Uint64
	abandoned          atomic.Uint64
}

// NewScheduler wires the dispatch dependencies. queueTimeout bounds every
// enqueue and dequeue; period is the background trigger interval.
func NewScheduler(source camera.Source, batch *BatchClassifier, regions *RegionSet, recorder Recorder,
	clock Clock, logger *logger.Logger, queueTimeout, period time.Duration) *Scheduler {
	return &Scheduler{
		foreground:   make(chan *Request, 1),
		background:   make(chan struct{}, 1),
		source:       source,
		batch:        batch,
		regions:      regions,
		recorder:     recorder,
		clock:        clock,
		logger:       logger,
		queueTimeout: queueTimeout,
		period:       period,
		closed:       make(chan struct{}),
	}
}

// Submit queues a foreground request. It returns false when a request is
// already pending; the caller must treat that as a drop, not retry.
func (s *Scheduler) Submit(req *Request) bool {
	if !enqueue(s.foreground, req, s.queueTimeout) {
		s.foregroundDropped.Add(1)
		s.logger.Warning("Failed to send request to queue: foreground request %s dropped", req.ID)
		return false
	}
	s.foregroundAccepted.Add(1)
	return true
}

// Trigger queues a background pass, dropping it when one is already pending.
func (s *Scheduler) Trigger() bool {
	if !enqueue(s.background, struct{}{}, s.queueTimeout) {
		s.backgroundDropped.Add(1)
		s.logger.Warning("Failed to send request to queue: background trigger dropped")
		return false
	}
	s.backgroundAccepted.Add(1)
	return true
}

// StartBackground moves the periodic trigger from stopped to running. It
// returns false when it was already running.
func (s *Scheduler) StartBackground() bool {
	if !s.running.CompareAndSwap(false, true) {
		return false
	}
	gen := s.generation.Add(1)
	go s.produce(gen)
	s.logger.Info("Background capture started, period %s", s.period)
	return true
}

// StopBackground clears the run flag. The producer checks the flag before each
// trigger, so at most one trigger that already passed the check can follow a
// stop. The goroutine may linger for up to one period.
func (s *Scheduler) StopBackground() bool {
	if !s.running.CompareAndSwap(true, false) {
		return false
	}
	s.logger.Info("Background capture stopped")
	return true
}

// Running reports the background run flag.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// produce enqueues one trigger per period while the run flag is set and this
// producer still belongs to the current run.
func (s *Scheduler) produce(gen uint64) {
	timer := time.NewTimer(s.period)
	defer timer.Stop()

	for s.running.Load() && s.generation.Load() == gen {
		s.Trigger()

		timer.Reset(s.period)
		select {
		case <-s.closed:
			return
		case <-timer.C:
		}
	}
}

// Run drains both queues until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Dispatch loop started")
	for ctx.Err() == nil {
		s.DispatchOnce(ctx)
	}
	s.logger.Info("Dispatch loop stopped")
}

// DispatchOnce performs one scheduling pass: a short-timeout dequeue from the
// foreground queue, then from the background queue. It serves at most one
// item and reports whether it did.
func (s *Scheduler) DispatchOnce(ctx context.Context) bool {
	if req, ok := dequeue(s.foreground, s.queueTimeout); ok {
		s.serveForeground(ctx, req)
		return true
	}
	if _, ok := dequeue(s.background, s.queueTimeout); ok {
		s.serveBackground(ctx)
		return true
	}
	return false
}

// Close stops background producers. In-flight passes run to completion.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		s.running.Store(false)
		close(s.closed)
	})
}

// Stats returns the current counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		Running:            s.running.Load(),
		ForegroundAccepted: s.foregroundAccepted.Load(),
		ForegroundDropped:  s.foregroundDropped.Load(),
		BackgroundAccepted: s.backgroundAccepted.Load(),
		BackgroundDropped:  s.backgroundDropped.Load(),
		Passes:             s.passes.Load(),
		Failures:           s.failures.Load(),
		Abandoned:          s.abandoned.Load(),
		Regions:            len(s.regions.Current()),
	}
}

func (s *Scheduler) serveForeground(ctx context.Context, req *Request) {
	if req.isAbandoned() {
		s.abandoned.Add(1)
		s.logger.Warning("Skipping request %s: client is gone", req.ID)
		req.reply("", ErrAbandoned)
		return
	}
	result, err := s.pass(ctx, model.SourceForeground, &req.body, !req.Preview)
	req.reply(result, err)
}

func (s *Scheduler) serveBackground(ctx context.Context) {
	s.logger.Debug("Processing image in background")
	s.pass(ctx, model.SourceBackground, nil, true)
}

// pass acquires a fresh frame, classifies every region and releases the frame
// exactly once. On success with infer set the result is recorded; on any
// failure nothing is recorded. The raw frame is appended to stream after the
// canvases of a completed pass.
func (s *Scheduler) pass(ctx context.Context, source model.Source, stream io.Writer, infer bool) (string, error) {
	s.passes.Add(1)
	regions := s.regions.Current()
	start := time.Now()

	frame, err := camera.AcquireFresh(ctx, s.source)
	if err != nil {
		s.failures.Add(1)
		s.logger.Error("Failed to acquire frame for %s pass: %v", source, err)
		return "", err
	}
	defer s.source.Release(frame)

	result, err := s.batch.Run(frame, regions, stream, infer)
	if err != nil {
		s.failures.Add(1)
		s.logger.Error("Classification pass (%s) aborted: %v", source, err)
		return result, err
	}

	if infer {
		now := s.clock.Now()
		entry := model.LogEntry{
			Timestamp: FormatTimestamp(now),
			Result:    result,
			Source:    source,
			CreatedAt: now.UTC(),
		}
		if err := s.recorder.Record(entry); err != nil {
			s.logger.Error("Failed to open log: %v", err)
		}
	}

	if stream != nil {
		if _, err := stream.Write(frame.Pix); err != nil {
			s.logger.Error("Failed to stream frame: %v", err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"source":   source,
		"regions":  len(regions),
		"result":   result,
		"duration": time.Since(start).String(),
	}).Debug("Classification pass completed")
	return result, nil
}

// enqueue offers item to a single-slot queue, waiting at most timeout.
func enqueue[T any](queue chan T, item T, timeout time.Duration) bool {
	select {
	case queue <- item:
		return true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case queue <- item:
		return true
	case <-timer.C:
		return false
	}
}

// dequeue takes the held item, waiting at most timeout for one to arrive.
func dequeue[T any](queue chan T, timeout time.Duration) (T, bool) {
	select {
	case item := <-queue:
		return item, true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case item := <-queue:
		return item, true
	case <-timer.C:
		var zero T
		return zero, false
	}
}
