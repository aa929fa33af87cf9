// Package dnn runs the digit model through OpenCV's DNN module, for models
// exported as ONNX, TensorFlow graphs or TFLite.
package dnn

import (
	"fmt"
	"image"
	"os"

	"digitcam/internal/service/ai"
	"digitcam/internal/service/imaging"

	"gocv.io/x/gocv"
)

// Engine keeps host-side tensors and feeds them to a gocv.Net on Invoke.
type Engine struct {
	net    gocv.Net
	input  []float32
	output []float32
	frame  gocv.Mat
}

// Load reads the network and selects the CPU backend.
func Load(modelPath, configPath string) (*Engine, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network: %s", modelPath)
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target")
	}

	return &Engine{
		net:    net,
		input:  make([]float32, ai.InputSize),
		output: make([]float32, ai.NumClasses),
		frame:  gocv.NewMatWithSize(imaging.CanvasSize, imaging.CanvasSize, gocv.MatTypeCV32F),
	}, nil
}

func (e *Engine) Input() []float32  { return e.input }
func (e *Engine) Output() []float32 { return e.output }

// Invoke copies the input into a 28×28 float Mat, runs a forward pass and
// copies the scores back.
func (e *Engine) Invoke() error {
	for y := 0; y < imaging.CanvasSize; y++ {
		for x := 0; x < imaging.CanvasSize; x++ {
			e.frame.SetFloatAt(y, x, e.input[y*imaging.CanvasSize+x])
		}
	}

	blob := gocv.BlobFromImage(e.frame, 1.0, image.Pt(imaging.CanvasSize, imaging.CanvasSize),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	if out.Empty() || out.Total() < ai.NumClasses {
		return fmt.Errorf("network produced %d values, expected %d", out.Total(), ai.NumClasses)
	}

	scores := out.Reshape(1, 1)
	defer scores.Close()
	for i := 0; i < ai.NumClasses; i++ {
		e.output[i] = scores.GetFloatAt(0, i)
	}
	return nil
}

// Close releases the network and the staging Mat.
func (e *Engine) Close() error {
	e.frame.Close()
	return e.net.Close()
}
