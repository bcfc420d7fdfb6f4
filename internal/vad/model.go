package vad

import (
	"fmt"

	"asrstream/internal/dsp"
	"asrstream/internal/frontend"
	"asrstream/internal/onnxrt"
)

// FSMN cache geometry for the VAD scoring model: 4 cache layers of shape
// [1,128,19,1], per original_source/src-tauri/src/funasr/models/vad.rs
// (FSMN_LAYERS=4, PROJ_DIM=128, LORDER=20 meaning a cache width of
// LORDER-1=19).
const (
	fsmnLayers = 4
	projDim    = 128
	cacheWidth = 19

	lfrM = 5
	lfrN = 1
)

var inputNames = []string{"speech", "in_cache0", "in_cache1", "in_cache2", "in_cache3"}
var outputNames = []string{"logits", "out_cache0", "out_cache1", "out_cache2", "out_cache3"}

// Recognizer scores audio frames for voice activity, driving a Model FSM
// to emit Start/End events.
type Recognizer struct {
	session   *onnxrt.Session
	extractor *dsp.FrameExtractor
	frontend  *frontend.StreamFrontend
	fsm       *Model
	caches    [fsmnLayers][]float32
}

// NewRecognizer opens the VAD ONNX model and builds an empty FSMN cache.
func NewRecognizer(modelPath string, cmvn frontend.CMVN) (*Recognizer, error) {
	sess, err := onnxrt.NewSession(modelPath, inputNames, outputNames)
	if err != nil {
		return nil, fmt.Errorf("vad: open model: %w", err)
	}
	r := &Recognizer{
		session:   sess,
		extractor: dsp.NewFrameExtractor(),
		frontend:  frontend.New(lfrM, lfrN, cmvn),
		fsm:       NewModel(),
	}
	r.resetCaches()
	return r, nil
}

func (r *Recognizer) resetCaches() {
	for i := range r.caches {
		r.caches[i] = make([]float32, projDim*cacheWidth)
	}
}

// Close releases the underlying ONNX session.
func (r *Recognizer) Close() error {
	return r.session.Close()
}

// Feed pushes newly captured PCM samples through FBANK extraction, LFR and
// CMVN, and the scoring model, returning the boundary events raised by any
// complete frames produced this call (normally zero or one, but a large
// input batch can raise several).
func (r *Recognizer) Feed(samples []float64) ([]Event, error) {
	frames := r.extractor.Feed(samples)
	if len(frames) == 0 {
		return nil, nil
	}

	decibels := make([]float64, len(frames))
	featRows := make([][]float64, len(frames))
	for i, f := range frames {
		featRows[i] = f.Feature
		decibels[i] = f.Decibel
	}

	stacked, err := r.frontend.Feed(featRows)
	if err != nil {
		return nil, fmt.Errorf("vad: frontend feed: %w", err)
	}
	if len(stacked) == 0 {
		return nil, nil
	}

	var events []Event
	for i, row := range stacked {
		event, err := r.scoreOne(row, decibels[minInt(i, len(decibels)-1)])
		if err != nil {
			return nil, err
		}
		if event != EventNone {
			events = append(events, event)
		}
	}
	return events, nil
}

func (r *Recognizer) scoreOne(feature []float64, decibel float64) (Event, error) {
	speech := make([]float32, len(feature))
	for i, v := range feature {
		speech[i] = float32(v)
	}

	inputs := []onnxrt.Tensor{
		onnxrt.F32Tensor("speech", []int64{1, 1, int64(len(feature))}, speech),
		onnxrt.F32Tensor("in_cache0", []int64{1, projDim, cacheWidth, 1}, r.caches[0]),
		onnxrt.F32Tensor("in_cache1", []int64{1, projDim, cacheWidth, 1}, r.caches[1]),
		onnxrt.F32Tensor("in_cache2", []int64{1, projDim, cacheWidth, 1}, r.caches[2]),
		onnxrt.F32Tensor("in_cache3", []int64{1, projDim, cacheWidth, 1}, r.caches[3]),
	}
	outputShapes := [][]int64{
		nil,
		{1, projDim, cacheWidth, 1},
		{1, projDim, cacheWidth, 1},
		{1, projDim, cacheWidth, 1},
		{1, projDim, cacheWidth, 1},
	}

	outputs, err := r.session.Run(inputs, outputShapes)
	if err != nil {
		return EventNone, fmt.Errorf("vad: run model: %w", err)
	}

	logits := outputs[0].F32
	for i := 0; i < fsmnLayers; i++ {
		r.caches[i] = outputs[i+1].F32
	}

	return r.fsm.DetectOneFrame(logits, decibel), nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
