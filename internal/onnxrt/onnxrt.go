// Package onnxrt wraps github.com/yalue/onnxruntime_go with the small
// surface the recognizers in this module need: named-tensor sessions whose
// input/output shapes change from call to call (the sequence length T is
// never fixed), which is why every session here is a DynamicAdvancedSession
// rather than a fixed-shape AdvancedSession.
package onnxrt

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	initOnce  sync.Once
	initErr   error
	destroyMu sync.Mutex
	destroyed bool
)

// SetSharedLibraryPath points the runtime at the ONNX Runtime shared
// library (libonnxruntime.so / .dylib / .dll). Must be called before Init.
// Left to the caller rather than hard-coded, matching onnxruntime_go's own
// API and the otto example's Config.OnnxLib field.
func SetSharedLibraryPath(path string) {
	ort.SetSharedLibraryPath(path)
}

// Init brings up the shared ONNX Runtime environment. Safe to call more
// than once; only the first call does anything.
func Init() error {
	initOnce.Do(func() {
		initErr = ort.InitializeEnvironment()
	})
	return initErr
}

// Close tears down the shared ONNX Runtime environment. Safe to call more
// than once.
func Close() error {
	destroyMu.Lock()
	defer destroyMu.Unlock()
	if destroyed {
		return nil
	}
	destroyed = true
	return ort.DestroyEnvironment()
}

// Kind tags which element type a Tensor carries, since the recognizers mix
// float32 feature tensors with int32/int64 scalar tensors (lengths,
// language ids) in the same input set.
type Kind int

const (
	KindFloat32 Kind = iota
	KindInt32
	KindInt64
)

// Tensor is a named, typed, shaped block of data headed into or out of a
// model call. Shape is in row-major dimension order.
type Tensor struct {
	Name  string
	Kind  Kind
	Shape []int64
	F32   []float32
	I32   []int32
	I64   []int64
}

func F32Tensor(name string, shape []int64, data []float32) Tensor {
	return Tensor{Name: name, Kind: KindFloat32, Shape: shape, F32: data}
}

func I32Tensor(name string, shape []int64, data []int32) Tensor {
	return Tensor{Name: name, Kind: KindInt32, Shape: shape, I32: data}
}

func I64Tensor(name string, shape []int64, data []int64) Tensor {
	return Tensor{Name: name, Kind: KindInt64, Shape: shape, I64: data}
}

func (t Tensor) toOrtValue() (ort.Value, error) {
	shape := ort.NewShape(t.Shape...)
	switch t.Kind {
	case KindFloat32:
		return ort.NewTensor(shape, t.F32)
	case KindInt32:
		return ort.NewTensor(shape, t.I32)
	case KindInt64:
		return ort.NewTensor(shape, t.I64)
	default:
		return nil, fmt.Errorf("onnxrt: unknown tensor kind %d for %q", t.Kind, t.Name)
	}
}

// Session is a model with a fixed, named set of inputs and outputs, run
// with shapes that may vary between calls.
type Session struct {
	path    string
	inputs  []string
	outputs []string
	sess    *ort.DynamicAdvancedSession
}

// NewSession opens an ONNX model for repeated inference calls. inputNames
// and outputNames must match the model's tensor names exactly and in the
// order values will be supplied to Run/produced from it.
func NewSession(path string, inputNames, outputNames []string) (*Session, error) {
	sess, err := ort.NewDynamicAdvancedSession(path, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("onnxrt: open session %s: %w", path, err)
	}
	return &Session{path: path, inputs: inputNames, outputs: outputNames, sess: sess}, nil
}

// Close releases the underlying ONNX Runtime session.
func (s *Session) Close() error {
	return s.sess.Destroy()
}

// Run executes the model once. inputs must be supplied in the same order
// as the names given to NewSession. outputShapes gives the known or
// expected shape for each output so its backing tensor can be allocated;
// pass nil for any output whose shape should be inferred by the runtime.
//
// Every output is read back as float32, including length/index tensors
// that the underlying models declare as int32 or int64. onnxruntime_go
// requires the destination type to match the model's declared output type
// exactly, so an output given a shape here is allocated as float32 and
// must be float32 in the model; an output passed a nil shape is allocated
// by the runtime at its declared type, and int32/int64 data is converted
// to float32. Callers that need an int output (e.g. encLen) round-trip it
// through the float32 value, which is exact for every length/count this
// module deals with.
func (s *Session) Run(inputs []Tensor, outputShapes [][]int64) ([]Tensor, error) {
	if len(inputs) != len(s.inputs) {
		return nil, fmt.Errorf("onnxrt: %s expects %d inputs, got %d", s.path, len(s.inputs), len(inputs))
	}
	if len(outputShapes) != len(s.outputs) {
		return nil, fmt.Errorf("onnxrt: %s expects %d outputs, got %d shapes", s.path, len(s.outputs), len(outputShapes))
	}

	inputValues := make([]ort.Value, len(inputs))
	for i, t := range inputs {
		v, err := t.toOrtValue()
		if err != nil {
			return nil, err
		}
		inputValues[i] = v
		defer v.Destroy()
	}

	outputValues := make([]ort.Value, len(s.outputs))
	for i, shape := range outputShapes {
		if shape == nil {
			outputValues[i] = nil
			continue
		}
		v, err := ort.NewEmptyTensor[float32](ort.NewShape(shape...))
		if err != nil {
			return nil, fmt.Errorf("onnxrt: allocate output %s: %w", s.outputs[i], err)
		}
		outputValues[i] = v
	}

	if err := s.sess.Run(inputValues, outputValues); err != nil {
		return nil, fmt.Errorf("onnxrt: run %s: %w", s.path, err)
	}

	results := make([]Tensor, len(s.outputs))
	for i, v := range outputValues {
		defer v.Destroy()
		switch tensor := v.(type) {
		case *ort.Tensor[float32]:
			data := tensor.GetData()
			out := make([]float32, len(data))
			copy(out, data)
			results[i] = F32Tensor(s.outputs[i], tensor.GetShape(), out)
		case *ort.Tensor[int32]:
			data := tensor.GetData()
			out := make([]float32, len(data))
			for j, x := range data {
				out[j] = float32(x)
			}
			results[i] = F32Tensor(s.outputs[i], tensor.GetShape(), out)
		case *ort.Tensor[int64]:
			data := tensor.GetData()
			out := make([]float32, len(data))
			for j, x := range data {
				out[j] = float32(x)
			}
			results[i] = F32Tensor(s.outputs[i], tensor.GetShape(), out)
		default:
			return nil, fmt.Errorf("onnxrt: output %s is not a float32, int32 or int64 tensor", s.outputs[i])
		}
	}
	return results, nil
}
