package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRectangle marks a rectangle that cannot be sampled.
var ErrInvalidRectangle = errors.New("invalid rectangle")

// Rectangle is a region of interest in source-frame pixel coordinates.
type Rectangle struct {
	X      uint `json:"x"`
	Y      uint `json:"y"`
	Width  uint `json:"width"`
	Height uint `json:"height"`
}

// MaxCoordinate bounds every rectangle field so pixel arithmetic stays in int range.
const MaxCoordinate = math.MaxInt32

// Configuration is the ordered rectangle list. Order is classification order
// and result-string order. A Configuration is never mutated after it is built.
type Configuration []Rectangle

// ConfigDocument is the persisted and uploaded form of a Configuration.
type ConfigDocument struct {
	Rectangles []Rectangle `json:"rectangles"`
}

// Fits reports whether the rectangle lies completely inside a frame of the given size.
func (r Rectangle) Fits(frameWidth, frameHeight int) bool {
	if frameWidth <= 0 || frameHeight <= 0 {
		return false
	}
	return uint64(r.X)+uint64(r.Width) <= uint64(frameWidth) &&
		uint64(r.Y)+uint64(r.Height) <= uint64(frameHeight)
}

// Validate checks every rectangle. Frame bounds are only checked when both
// dimensions are known (> 0).
func (c Configuration) Validate(frameWidth, frameHeight int) error {
	for i, r := range c {
		if r.Width == 0 || r.Height == 0 {
			return fmt.Errorf("%w: rectangle %d has zero size", ErrInvalidRectangle, i)
		}
		if r.X > MaxCoordinate || r.Y > MaxCoordinate || r.Width > MaxCoordinate || r.Height > MaxCoordinate {
			return fmt.Errorf("%w: rectangle %d has a coordinate above %d", ErrInvalidRectangle, i, MaxCoordinate)
		}
		if frameWidth > 0 && frameHeight > 0 && !r.Fits(frameWidth, frameHeight) {
			return fmt.Errorf("%w: rectangle %d (%d,%d %dx%d) exceeds frame %dx%d",
				ErrInvalidRectangle, i, r.X, r.Y, r.Width, r.Height, frameWidth, frameHeight)
		}
	}
	return nil
}

// Clone returns an independent copy.
func (c Configuration) Clone() Configuration {
	if c == nil {
		return Configuration{}
	}
	out := make(Configuration, len(c))
	copy(out, c)
	return out
}
