// Package still serves a fixed grayscale image as the camera, for bench
// setups without a sensor attached.
package still

import (
	"context"
	"fmt"

	"digitcam/internal/service/camera"

	"gocv.io/x/gocv"
)

// Image is a frame source that always returns the same picture.
type Image struct {
	pix    []byte
	width  int
	height int
}

// Open decodes path as an 8-bit grayscale image.
func Open(path string) (*Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	if mat.Empty() {
		return nil, fmt.Errorf("failed to read image: %s", path)
	}
	defer mat.Close()

	return &Image{
		pix:    mat.ToBytes(),
		width:  mat.Cols(),
		height: mat.Rows(),
	}, nil
}

// Acquire returns a private copy of the image.
func (s *Image) Acquire(ctx context.Context) (*camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pix := make([]byte, len(s.pix))
	copy(pix, s.pix)
	return &camera.Frame{Pix: pix, Width: s.width, Height: s.height}, nil
}

func (s *Image) Release(frame *camera.Frame) {
	if frame != nil {
		frame.Pix = nil
	}
}

func (s *Image) Close() error { return nil }
