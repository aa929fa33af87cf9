// Package camera defines the frame source the classification pipeline reads
// from. Implementations live in the webcam and still subpackages.
package camera

import (
	"context"
	"errors"
)

// ErrCaptureFailed is returned when the device yields no usable frame.
var ErrCaptureFailed = errors.New("frame capture failed")

// Frame is one captured single-channel 8-bit image, row-major.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// Source hands out frames. Each acquired frame is exclusively owned by the
// caller until it is passed back to Release, exactly once.
type Source interface {
	Acquire(ctx context.Context) (*Frame, error)
	Release(frame *Frame)
	Close() error
}

// AcquireFresh discards one frame and returns the next. Drivers that keep a
// frame queued return a stale image on the first read after an idle period.
func AcquireFresh(ctx context.Context, src Source) (*Frame, error) {
	stale, err := src.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	src.Release(stale)
	return src.Acquire(ctx)
}
