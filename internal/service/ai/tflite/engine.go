// Package tflite runs the digit model with the TensorFlow Lite C runtime.
package tflite

import (
	"fmt"
	"os"

	"github.com/mattn/go-tflite"
)

// Engine owns one interpreter with tensors allocated once at load time, the
// same lifetime the model had on the device.
type Engine struct {
	model       *tflite.Model
	options     *tflite.InterpreterOptions
	interpreter *tflite.Interpreter
	input       []float32
	output      []float32
}

// Load reads a .tflite model and allocates its tensors.
func Load(modelPath string, numThreads int) (*Engine, error) {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", modelPath)
	}

	model := tflite.NewModelFromFile(modelPath)
	if model == nil {
		return nil, fmt.Errorf("failed to load model: %s", modelPath)
	}

	options := tflite.NewInterpreterOptions()
	if numThreads > 0 {
		options.SetNumThread(numThreads)
	}

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to create interpreter")
	}

	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("failed to allocate tensors: status %d", status)
	}

	inputTensor := interpreter.GetInputTensor(0)
	outputTensor := interpreter.GetOutputTensor(0)
	if inputTensor == nil || outputTensor == nil {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("model has no input/output tensor")
	}
	if inputTensor.Type() != tflite.Float32 || outputTensor.Type() != tflite.Float32 {
		interpreter.Delete()
		options.Delete()
		model.Delete()
		return nil, fmt.Errorf("model tensors must be float32 (input %v, output %v)", inputTensor.Type(), outputTensor.Type())
	}

	return &Engine{
		model:       model,
		options:     options,
		interpreter: interpreter,
		input:       inputTensor.Float32s(),
		output:      outputTensor.Float32s(),
	}, nil
}

// Input returns the interpreter's input tensor memory.
func (e *Engine) Input() []float32 { return e.input }

// Output returns the interpreter's output tensor memory.
func (e *Engine) Output() []float32 { return e.output }

// Invoke runs the model once.
func (e *Engine) Invoke() error {
	if status := e.interpreter.Invoke(); status != tflite.OK {
		return fmt.Errorf("interpreter invoke: status %d", status)
	}
	return nil
}

// Close frees the interpreter, its options and the model.
func (e *Engine) Close() error {
	e.interpreter.Delete()
	e.options.Delete()
	e.model.Delete()
	return nil
}
