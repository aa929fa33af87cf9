package service

import (
	"fmt"
	"io"
	"strings"

	"digitcam/internal/model"
	"digitcam/internal/service/camera"
	"digitcam/internal/service/imaging"
)

// DigitClassifier maps one canvas to a digit.
type DigitClassifier interface {
	Classify(canvas []byte) (int, error)
}

// BatchClassifier runs every configured region of one frame through the
// resampler and the classifier. It reuses a single canvas and is owned by the
// dispatch loop, like the classifier it wraps.
type BatchClassifier struct {
	classifier DigitClassifier
	canvas     imaging.Canvas
}

// NewBatchClassifier wraps classifier.
func NewBatchClassifier(classifier DigitClassifier) *BatchClassifier {
	return &BatchClassifier{classifier: classifier}
}

// Run processes regions in order and returns one digit character per region.
// When stream is non-nil each canvas is written to it before the next region
// starts. With infer false only the canvases are produced and the result is
// empty.
//
// The first failure stops the loop; the digits gathered so far are returned
// together with the error and must not be logged.
func (b *BatchClassifier) Run(frame *camera.Frame, regions model.Configuration, stream io.Writer, infer bool) (string, error) {
	var result strings.Builder
	result.Grow(len(regions))

	for i, rect := range regions {
		view := imaging.NewSourceView(frame.Pix, frame.Width, frame.Height, rect)
		if err := imaging.Scale(view, b.canvas[:], imaging.CanvasSize, imaging.CanvasSize); err != nil {
			return result.String(), fmt.Errorf("region %d: %w", i, err)
		}

		if infer {
			digit, err := b.classifier.Classify(b.canvas[:])
			if err != nil {
				return result.String(), fmt.Errorf("region %d: %w", i, err)
			}
			result.WriteByte(byte('0' + digit))
		}

		if stream != nil {
			if _, err := stream.Write(b.canvas[:]); err != nil {
				return result.String(), fmt.Errorf("region %d: stream canvas: %w", i, err)
			}
		}
	}

	return result.String(), nil
}
