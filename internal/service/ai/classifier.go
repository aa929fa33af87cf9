package ai

import (
	"errors"
	"fmt"

	"digitcam/internal/service/imaging"
)

const (
	// InputSize is the number of float inputs: one per canvas pixel.
	InputSize = imaging.CanvasPixels
	// NumClasses is the number of output scores, one per digit.
	NumClasses = 10
)

var (
	// ErrInference is returned when the engine fails to run; the request that
	// triggered it is abandoned.
	ErrInference = errors.New("inference failed")
	// ErrTensorShape is returned when an engine's tensors do not match the
	// 784-in / 10-out digit model.
	ErrTensorShape = errors.New("unexpected tensor shape")
)

// Engine is a loaded model with one fixed input and one fixed output tensor.
// Input and Output return views onto the engine's own buffers; they stay
// valid until Close.
type Engine interface {
	Input() []float32
	Output() []float32
	Invoke() error
	Close() error
}

// Classifier turns a binarized canvas into a digit label.
//
// A Classifier mutates the engine's tensors and is not safe for concurrent
// use. The scheduler's dispatch loop is its only caller.
type Classifier struct {
	engine Engine
}

// NewClassifier checks the engine's tensor shapes and wraps it.
func NewClassifier(engine Engine) (*Classifier, error) {
	if n := len(engine.Input()); n != InputSize {
		return nil, fmt.Errorf("%w: input has %d elements, expected %d", ErrTensorShape, n, InputSize)
	}
	if n := len(engine.Output()); n != NumClasses {
		return nil, fmt.Errorf("%w: output has %d elements, expected %d", ErrTensorShape, n, NumClasses)
	}
	return &Classifier{engine: engine}, nil
}

// Classify normalizes canvas into the input tensor, runs the model and returns
// the index of the highest score.
func (c *Classifier) Classify(canvas []byte) (int, error) {
	if len(canvas) != InputSize {
		return 0, fmt.Errorf("%w: canvas has %d bytes, expected %d", ErrTensorShape, len(canvas), InputSize)
	}

	input := c.engine.Input()
	for i, px := range canvas {
		input[i] = float32(px) / 255.0
	}

	if err := c.engine.Invoke(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInference, err)
	}

	return argmax(c.engine.Output()), nil
}

// Close releases the engine.
func (c *Classifier) Close() error {
	return c.engine.Close()
}

// argmax scans with a running maximum seeded at 0 and strict comparison, so
// ties go to the lowest index and an all-nonpositive output yields 0. The
// model must therefore emit non-negative scores (softmax).
func argmax(scores []float32) int {
	maxIndex := 0
	var maxValue float32
	for i, v := range scores {
		if v > maxValue {
			maxValue = v
			maxIndex = i
		}
	}
	return maxIndex
}
