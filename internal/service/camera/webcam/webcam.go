// Package webcam captures grayscale frames from a local camera or stream
// through OpenCV.
package webcam

import (
	"context"
	"fmt"
	"strconv"

	"digitcam/internal/service/camera"

	"gocv.io/x/gocv"
)

// Webcam wraps a gocv.VideoCapture. It is used by a single owner (the
// dispatch loop) and does no locking of its own.
type Webcam struct {
	capture *gocv.VideoCapture
	raw     gocv.Mat
	gray    gocv.Mat
	width   int
	height  int
}

// Open opens a device index ("0") or a stream URL. Non-zero width/height are
// requested from the driver and enforced on every frame.
func Open(source string, width, height int) (*Webcam, error) {
	var device interface{} = source
	if id, err := strconv.Atoi(source); err == nil {
		device = id
	}

	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %s: %w", source, err)
	}
	if width > 0 && height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}

	return &Webcam{
		capture: capture,
		raw:     gocv.NewMat(),
		gray:    gocv.NewMat(),
		width:   width,
		height:  height,
	}, nil
}

// Acquire reads one frame and converts it to grayscale.
func (w *Webcam) Acquire(ctx context.Context) (*camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ok := w.capture.Read(&w.raw); !ok || w.raw.Empty() {
		return nil, camera.ErrCaptureFailed
	}

	if w.raw.Channels() == 1 {
		w.raw.CopyTo(&w.gray)
	} else if err := gocv.CvtColor(w.raw, &w.gray, gocv.ColorBGRToGray); err != nil {
		return nil, fmt.Errorf("%w: grayscale conversion: %v", camera.ErrCaptureFailed, err)
	}

	if w.width > 0 && w.height > 0 && (w.gray.Cols() != w.width || w.gray.Rows() != w.height) {
		return nil, fmt.Errorf("%w: got %dx%d, expected %dx%d", camera.ErrCaptureFailed,
			w.gray.Cols(), w.gray.Rows(), w.width, w.height)
	}

	return &camera.Frame{
		Pix:    w.gray.ToBytes(),
		Width:  w.gray.Cols(),
		Height: w.gray.Rows(),
	}, nil
}

// Release drops the caller's reference; the pixel slice is a copy owned by
// the frame, so nothing is returned to the driver.
func (w *Webcam) Release(frame *camera.Frame) {
	if frame != nil {
		frame.Pix = nil
	}
}

// Close releases the capture device and staging Mats.
func (w *Webcam) Close() error {
	w.raw.Close()
	w.gray.Close()
	return w.capture.Close()
}
