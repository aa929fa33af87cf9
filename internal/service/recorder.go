package service

import (
	"digitcam/internal/logger"
	"digitcam/internal/model"
)

// ResultLog is the authoritative store for completed passes.
type ResultLog interface {
	Append(timestamp, result string) error
	Reset() error
}

// ResultSink receives a copy of every recorded entry.
type ResultSink interface {
	Record(entry model.LogEntry) error
}

// resettable sinks drop their history when the log is reset.
type resettable interface {
	Reset() error
}

// ResultRecorder writes each entry to the text log and then fans it out to
// the sinks. Sink failures are logged and never reported to the caller.
type ResultRecorder struct {
	log    ResultLog
	sinks  []ResultSink
	logger *logger.Logger
}

// NewResultRecorder creates a recorder over log and sinks.
func NewResultRecorder(log ResultLog, logger *logger.Logger, sinks ...ResultSink) *ResultRecorder {
	return &ResultRecorder{log: log, sinks: sinks, logger: logger}
}

// AddSink registers another sink. Not safe once the dispatch loop is running.
func (r *ResultRecorder) AddSink(sink ResultSink) {
	r.sinks = append(r.sinks, sink)
}

// Record appends entry to the text log. If that fails the entry is lost and
// the sinks are skipped.
func (r *ResultRecorder) Record(entry model.LogEntry) error {
	if err := r.log.Append(entry.Timestamp, entry.Result); err != nil {
		return err
	}

	for _, sink := range r.sinks {
		if err := sink.Record(entry); err != nil {
			r.logger.Warning("Result sink failed: %v", err)
		}
	}
	return nil
}

// Reset truncates the text log and clears any sink that keeps history.
func (r *ResultRecorder) Reset() error {
	if err := r.log.Reset(); err != nil {
		return err
	}

	for _, sink := range r.sinks {
		if rs, ok := sink.(resettable); ok {
			if err := rs.Reset(); err != nil {
				r.logger.Error("Failed to reset result sink: %v", err)
			}
		}
	}
	return nil
}
