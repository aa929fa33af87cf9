package service

import "time"

// TimestampLayout matches the NTP client format the log has always used.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Clock supplies wall time for log entries.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FormatTimestamp renders t in UTC with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
