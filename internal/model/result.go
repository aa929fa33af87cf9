package model

import "time"

// Source identifies which queue produced a classification pass.
type Source string

const (
	SourceForeground Source = "foreground"
	SourceBackground Source = "background"
)

// LogEntry is one completed classification pass.
type LogEntry struct {
	ID        int64     `json:"id,omitempty"`
	Timestamp string    `json:"timestamp"` // formatted clock value written to the text log
	Result    string    `json:"result"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// Line renders the entry the way the text log stores it.
func (e LogEntry) Line() string {
	return "[" + e.Timestamp + "] " + e.Result + "\n"
}

// ResultFilter pages through stored entries.
type ResultFilter struct {
	Source Source
	Limit  int
	Offset int
}
