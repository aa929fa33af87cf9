// Package imaging reduces a rectangular region of a grayscale frame to the
// fixed binarized canvas the digit classifier consumes.
package imaging

import (
	"errors"
	"fmt"

	"digitcam/internal/model"
)

const (
	// CanvasSize is the side length of the classifier input.
	CanvasSize = 28
	// CanvasPixels is the number of bytes in one canvas.
	CanvasPixels = CanvasSize * CanvasSize
	// BinarizeThreshold: interpolated values strictly above it become white.
	BinarizeThreshold = 220
)

var (
	ErrInvalidView       = errors.New("invalid source view")
	ErrRegionOutOfBounds = errors.New("region exceeds frame")
	ErrCanvasSize        = errors.New("invalid canvas size")
)

// Canvas is one classifier input, row-major, single channel.
type Canvas [CanvasPixels]byte

// SourceView is a read-only window onto a single-channel frame buffer. The
// buffer is borrowed for the duration of one Scale call.
type SourceView struct {
	Pix           []byte
	Width         int // full buffer width (row stride)
	Height        int
	OffsetX       int
	OffsetY       int
	SectionWidth  int
	SectionHeight int
}

// NewSourceView builds the view of rect inside a width×height buffer.
func NewSourceView(pix []byte, width, height int, rect model.Rectangle) SourceView {
	return SourceView{
		Pix:           pix,
		Width:         width,
		Height:        height,
		OffsetX:       int(rect.X),
		OffsetY:       int(rect.Y),
		SectionWidth:  int(rect.Width),
		SectionHeight: int(rect.Height),
	}
}

// Validate rejects views whose section would read outside the buffer.
func (v SourceView) Validate() error {
	if v.Width <= 0 || v.Height <= 0 || len(v.Pix) < v.Width*v.Height {
		return fmt.Errorf("%w: %dx%d buffer with %d bytes", ErrInvalidView, v.Width, v.Height, len(v.Pix))
	}
	if v.SectionWidth <= 0 || v.SectionHeight <= 0 || v.OffsetX < 0 || v.OffsetY < 0 {
		return fmt.Errorf("%w: section %d,%d %dx%d", ErrInvalidView, v.OffsetX, v.OffsetY, v.SectionWidth, v.SectionHeight)
	}
	// Compared without adding so huge offsets cannot wrap around.
	if v.SectionWidth > v.Width || v.OffsetX > v.Width-v.SectionWidth ||
		v.SectionHeight > v.Height || v.OffsetY > v.Height-v.SectionHeight {
		return fmt.Errorf("%w: section %d,%d %dx%d in %dx%d frame", ErrRegionOutOfBounds,
			v.OffsetX, v.OffsetY, v.SectionWidth, v.SectionHeight, v.Width, v.Height)
	}
	return nil
}

// at returns the sample at section coordinate (x, y).
func (v SourceView) at(x, y int) float32 {
	return float32(v.Pix[(y+v.OffsetY)*v.Width+x+v.OffsetX])
}

// Scale resamples the view's section into dst (newWidth×newHeight, row-major)
// with bilinear interpolation and binarizes every pixel against
// BinarizeThreshold.
//
// Destination pixel d maps to section coordinate (d+0.5)*section/new - 0.5,
// which keeps pixel centres aligned: a 1:1 scale samples every source pixel
// exactly. The coordinate is bounded to [0, section-1] and the +1 neighbour
// is clamped to the last row/column, so no read leaves the section.
func Scale(src SourceView, dst []byte, newWidth, newHeight int) error {
	if newWidth <= 0 || newHeight <= 0 || len(dst) < newWidth*newHeight {
		return fmt.Errorf("%w: %dx%d into %d bytes", ErrCanvasSize, newWidth, newHeight, len(dst))
	}
	if err := src.Validate(); err != nil {
		return err
	}

	for y := 0; y < newHeight; y++ {
		gy, gyi, gyn := sourceCoord(y, newHeight, src.SectionHeight)
		ty := gy - float32(gyi)
		for x := 0; x < newWidth; x++ {
			gx, gxi, gxn := sourceCoord(x, newWidth, src.SectionWidth)
			tx := gx - float32(gxi)

			c00 := src.at(gxi, gyi)
			c10 := src.at(gxn, gyi)
			c01 := src.at(gxi, gyn)
			c11 := src.at(gxn, gyn)

			value := byte(blerp(c00, c10, c01, c11, tx, ty))
			if value > BinarizeThreshold {
				dst[y*newWidth+x] = 255
			} else {
				dst[y*newWidth+x] = 0
			}
		}
	}
	return nil
}

// sourceCoord maps destination index d to a bounded section coordinate and
// returns it with its integer part and the clamped next index.
func sourceCoord(d, newDim, section int) (g float32, i0, i1 int) {
	g = (float32(d)+0.5)*float32(section)/float32(newDim) - 0.5
	last := float32(section - 1)
	if g < 0 {
		g = 0
	}
	if g > last {
		g = last
	}
	i0 = int(g)
	i1 = i0 + 1
	if i1 > section-1 {
		i1 = section - 1
	}
	return g, i0, i1
}

func lerp(s, e, t float32) float32 {
	return s + (e-s)*t
}

func blerp(c00, c10, c01, c11, tx, ty float32) float32 {
	return lerp(lerp(c00, c10, tx), lerp(c01, c11, tx), ty)
}
