package imaging

import (
	"errors"
	"math"
	"testing"

	"digitcam/internal/model"
)

func uniformFrame(w, h int, v byte) []byte {
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = v
	}
	return pix
}

func binarize(v byte) byte {
	if v > BinarizeThreshold {
		return 255
	}
	return 0
}

func TestScale_IdentityMatchesBinarizedSource(t *testing.T) {
	pix := make([]byte, CanvasPixels)
	for i := range pix {
		pix[i] = byte((i * 37) % 256)
	}
	view := NewSourceView(pix, CanvasSize, CanvasSize, model.Rectangle{Width: CanvasSize, Height: CanvasSize})

	var canvas Canvas
	if err := Scale(view, canvas[:], CanvasSize, CanvasSize); err != nil {
		t.Fatalf("Scale failed: %v", err)
	}

	for i := range pix {
		if canvas[i] != binarize(pix[i]) {
			t.Fatalf("pixel %d: got %d, expected %d (source %d)", i, canvas[i], binarize(pix[i]), pix[i])
		}
	}
}

func TestScale_IdentityWithOffset(t *testing.T) {
	const w, h = 40, 35
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%3 == 0 {
				pix[y*w+x] = 250
			}
		}
	}
	rect := model.Rectangle{X: 7, Y: 5, Width: CanvasSize, Height: CanvasSize}

	var canvas Canvas
	if err := Scale(NewSourceView(pix, w, h, rect), canvas[:], CanvasSize, CanvasSize); err != nil {
		t.Fatalf("Scale failed: %v", err)
	}

	for y := 0; y < CanvasSize; y++ {
		for x := 0; x < CanvasSize; x++ {
			want := binarize(pix[(y+5)*w+x+7])
			if canvas[y*CanvasSize+x] != want {
				t.Fatalf("(%d,%d): got %d, expected %d", x, y, canvas[y*CanvasSize+x], want)
			}
		}
	}
}

func TestScale_UniformField(t *testing.T) {
	tests := []struct {
		name  string
		value byte
		w, h  uint
	}{
		{"white downscale", 255, 56, 56},
		{"just above threshold", 221, 100, 37},
		{"at threshold", 220, 56, 56},
		{"black", 0, 90, 120},
		{"upscale small region", 240, 5, 9},
		{"single pixel", 230, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix := uniformFrame(int(tt.w)+3, int(tt.h)+2, tt.value)
			rect := model.Rectangle{X: 3, Y: 2, Width: tt.w, Height: tt.h}

			var canvas Canvas
			if err := Scale(NewSourceView(pix, int(tt.w)+3, int(tt.h)+2, rect), canvas[:], CanvasSize, CanvasSize); err != nil {
				t.Fatalf("Scale failed: %v", err)
			}

			want := binarize(tt.value)
			for i, got := range canvas {
				if got != want {
					t.Fatalf("pixel %d: got %d, expected %d", i, got, want)
				}
			}
		})
	}
}

// The lower-right corner of the section must be reachable; an inverted clamp
// would pin every sample to the last row and column instead.
func TestScale_SamplesWholeSection(t *testing.T) {
	const size = 56
	pix := make([]byte, size*size)
	// Only the top-left quadrant is white.
	for y := 0; y < size/2; y++ {
		for x := 0; x < size/2; x++ {
			pix[y*size+x] = 255
		}
	}

	var canvas Canvas
	rect := model.Rectangle{Width: size, Height: size}
	if err := Scale(NewSourceView(pix, size, size, rect), canvas[:], CanvasSize, CanvasSize); err != nil {
		t.Fatalf("Scale failed: %v", err)
	}

	if canvas[0] != 255 {
		t.Errorf("top-left: got %d, expected 255", canvas[0])
	}
	if canvas[CanvasPixels-1] != 0 {
		t.Errorf("bottom-right: got %d, expected 0", canvas[CanvasPixels-1])
	}
}

// A region flush against the frame's right and bottom edges must not read past
// the buffer; the frame is sized exactly so an over-read would panic.
func TestScale_EdgeRegionStaysInBounds(t *testing.T) {
	const w, h = 50, 30
	pix := uniformFrame(w, h, 255)
	rect := model.Rectangle{X: 20, Y: 10, Width: 30, Height: 20}

	var canvas Canvas
	if err := Scale(NewSourceView(pix[:w*h:w*h], w, h, rect), canvas[:], CanvasSize, CanvasSize); err != nil {
		t.Fatalf("Scale failed: %v", err)
	}
	if canvas[CanvasPixels-1] != 255 {
		t.Errorf("last pixel: got %d, expected 255", canvas[CanvasPixels-1])
	}
}

func TestScale_RejectsOutOfContractInput(t *testing.T) {
	pix := uniformFrame(40, 40, 0)
	var canvas Canvas

	tests := []struct {
		name    string
		view    SourceView
		dst     []byte
		wantErr error
	}{
		{"region past right edge", NewSourceView(pix, 40, 40, model.Rectangle{X: 20, Width: 21, Height: 10}), canvas[:], ErrRegionOutOfBounds},
		{"region past bottom edge", NewSourceView(pix, 40, 40, model.Rectangle{Y: 39, Width: 5, Height: 2}), canvas[:], ErrRegionOutOfBounds},
		{"zero width", NewSourceView(pix, 40, 40, model.Rectangle{Height: 10}), canvas[:], ErrInvalidView},
		{"short buffer", NewSourceView(pix[:100], 40, 40, model.Rectangle{Width: 2, Height: 2}), canvas[:], ErrInvalidView},
		{"offset near int limit", NewSourceView(pix, 40, 40, model.Rectangle{X: math.MaxInt64, Width: 2, Height: 2}), canvas[:], ErrRegionOutOfBounds},
		{"row offset near int limit", NewSourceView(pix, 40, 40, model.Rectangle{Y: math.MaxInt64 - 1, Width: 2, Height: 2}), canvas[:], ErrRegionOutOfBounds},
		{"width near int limit", NewSourceView(pix, 40, 40, model.Rectangle{X: 1, Width: math.MaxInt64, Height: 2}), canvas[:], ErrRegionOutOfBounds},
		{"small canvas", NewSourceView(pix, 40, 40, model.Rectangle{Width: 10, Height: 10}), canvas[:10], ErrCanvasSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Scale(tt.view, tt.dst, CanvasSize, CanvasSize)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSourceCoord_Bounds(t *testing.T) {
	tests := []struct {
		d, newDim, section int
	}{
		{0, 28, 56},
		{27, 28, 56},
		{27, 28, 3},
		{0, 28, 1},
		{13, 28, 28},
	}

	for _, tt := range tests {
		g, i0, i1 := sourceCoord(tt.d, tt.newDim, tt.section)
		if g < 0 || g > float32(tt.section-1) {
			t.Errorf("sourceCoord(%d,%d,%d): g=%f out of [0,%d]", tt.d, tt.newDim, tt.section, g, tt.section-1)
		}
		if i0 < 0 || i1 > tt.section-1 || i1 < i0 {
			t.Errorf("sourceCoord(%d,%d,%d): neighbours %d,%d out of section", tt.d, tt.newDim, tt.section, i0, i1)
		}
	}
}
