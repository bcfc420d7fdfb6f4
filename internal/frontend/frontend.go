// Package frontend implements the LFR (low frame rate) stacking and CMVN
// normalization step that sits between FBANK extraction and a recognizer's
// encoder, carrying its own residual buffer across streaming calls.
package frontend

import "fmt"

// CMVN holds the affine per-coefficient normalization statistics for one
// recognizer's LFR-stacked feature dimension. Means are stored already
// negated, so normalization is a single multiply-add: (x+means)*vars.
type CMVN struct {
	Means []float64
	Vars  []float64
}

// Apply normalizes one LFR-stacked feature vector in place.
func (c CMVN) Apply(x []float64) {
	for i := range x {
		x[i] = (x[i] + c.Means[i]) * c.Vars[i]
	}
}

// StreamFrontend stacks M consecutive FBANK frames with stride N (low frame
// rate reduction) and applies CMVN, carrying over any frames left short of
// a full stack as residual for the next Feed call. Each consumer (VAD,
// Paraformer, SenseVoice) owns an independent StreamFrontend instance, per
// the module's design: no shared global residual state.
type StreamFrontend struct {
	cmvn     CMVN
	m, n     int
	residual [][]float64
}

// New builds a StreamFrontend with LFR stack size m, stride n, and the
// given CMVN statistics (whose length must equal m * melBins).
func New(m, n int, cmvn CMVN) *StreamFrontend {
	return &StreamFrontend{cmvn: cmvn, m: m, n: n}
}

// Feed appends newFrames (one []float64 per FBANK frame) to the residual
// buffer and emits as many complete LFR-stacked, CMVN-normalized output
// rows as the buffer now supports, leaving the rest as residual.
func (f *StreamFrontend) Feed(newFrames [][]float64) ([][]float64, error) {
	f.residual = append(f.residual, newFrames...)

	var out [][]float64
	for len(f.residual) >= f.m {
		stacked, err := f.stack(f.residual[:f.m])
		if err != nil {
			return nil, err
		}
		f.cmvn.Apply(stacked)
		out = append(out, stacked)

		if f.n >= len(f.residual) {
			f.residual = nil
			break
		}
		f.residual = f.residual[f.n:]
	}
	return out, nil
}

func (f *StreamFrontend) stack(frames [][]float64) ([]float64, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("frontend: stack called on zero frames")
	}
	width := len(frames[0])
	stacked := make([]float64, 0, width*len(frames))
	for _, fr := range frames {
		if len(fr) != width {
			return nil, fmt.Errorf("frontend: inconsistent frame width %d, want %d", len(fr), width)
		}
		stacked = append(stacked, fr...)
	}
	return stacked, nil
}

// Reset clears the residual buffer, used when a recognizer's session
// boundary (e.g. an utterance end) invalidates carried-over frames.
func (f *StreamFrontend) Reset() {
	f.residual = nil
}

// Pending returns the number of FBANK frames currently buffered awaiting a
// full LFR stack.
func (f *StreamFrontend) Pending() int {
	return len(f.residual)
}
