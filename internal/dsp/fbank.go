package dsp

import "math"

const (
	SampleRate   = 16000
	FrameLength  = 400 // samples per analysis window
	FrameShift   = 160 // samples per hop
	FFTSize      = 512
	NumMels      = 80
	preEmphCoeff = 0.97

	// waveformScale converts samples from the capture pipeline's [-1,1]
	// range to the [-32768,32768] range FBANK and the decibel computation
	// both expect, matching the original's pretreatment step.
	waveformScale = 32768.0
)

// Frame is one analysis window's worth of FBANK features, plus the raw
// energy of the window in decibels (used by the VAD for its noise-floor
// tracking, computed before any of the feature-extraction preprocessing
// below is applied).
type Frame struct {
	Feature []float64 // length NumMels
	Decibel float64
}

var window = hammingWindow(FrameLength)
var filters = melFilterbank(NumMels, FFTSize, SampleRate, 0, 0)

// NewFrame builds a Frame from one FrameLength-sample window of raw PCM.
func NewFrame(samples []float64) Frame {
	decibel := computeDecibel(samples)
	feature := computeFeatures(samples)
	return Frame{Feature: feature, Decibel: decibel}
}

// computeDecibel measures the window's energy before DC removal,
// pre-emphasis, or windowing are applied — it reflects the raw signal.
func computeDecibel(samples []float64) float64 {
	var energy float64
	for _, s := range samples {
		energy += s * s
	}
	return 10 * math.Log10(energy+1e-10)
}

// computeFeatures applies DC removal, pre-emphasis, a Hamming window, then
// an FFT over the frame zero-padded to FFTSize, and reduces the power
// spectrum through the mel filterbank into log-mel energies.
func computeFeatures(samples []float64) []float64 {
	n := len(samples)
	buf := make([]float64, n)
	copy(buf, samples)

	mean := 0.0
	for _, s := range buf {
		mean += s
	}
	mean /= float64(n)
	for i := range buf {
		buf[i] -= mean
	}

	preemph := make([]float64, n)
	preemph[0] = buf[0]
	for i := 1; i < n; i++ {
		preemph[i] = buf[i] - preEmphCoeff*buf[i-1]
	}

	for i := 0; i < n && i < len(window); i++ {
		preemph[i] *= window[i]
	}

	padded := make([]float64, FFTSize)
	copy(padded, preemph)

	power := powerSpectrum(padded, FFTSize)

	mel := make([]float64, NumMels)
	for m := 0; m < NumMels; m++ {
		var sum float64
		row := filters[m]
		for bin := 0; bin < FFTSize; bin++ {
			sum += power[bin] * row[bin]
		}
		mel[m] = math.Log(sum + 1e-10)
	}
	return mel
}

// Fbank frames a PCM waveform into overlapping FrameLength-sample windows
// at FrameShift-sample hops and extracts a Frame from each, returning
// whatever trailing samples were too short to fill one more frame so the
// caller can prepend them to the next batch.
func Fbank(samples []float64) ([]Frame, []float64) {
	if len(samples) < FrameLength {
		return nil, samples
	}
	numFrames := 1 + (len(samples)-FrameLength)/FrameShift
	frames := make([]Frame, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		start := i * FrameShift
		frames = append(frames, NewFrame(samples[start:start+FrameLength]))
	}
	remaining := samples[numFrames*FrameShift:]
	return frames, append([]float64(nil), remaining...)
}

// FrameExtractor turns a stream of raw [-1,1] PCM samples into FBANK
// Frames: it scales each batch into the [-32768,32768] range FBANK
// expects, prepends whatever waveform tail the previous Feed call
// couldn't fill a frame with, and keeps the new tail for the next call.
// Each recognizer owns its own FrameExtractor, so one consumer's framing
// boundary never affects another's.
type FrameExtractor struct {
	residual []float64
}

// NewFrameExtractor builds an extractor with no carried residual.
func NewFrameExtractor() *FrameExtractor {
	return &FrameExtractor{}
}

// Feed scales and frames newSamples, prepending any residual left over
// from the previous call.
func (e *FrameExtractor) Feed(newSamples []float64) []Frame {
	scaled := make([]float64, len(newSamples))
	for i, s := range newSamples {
		scaled[i] = s * waveformScale
	}
	waveform := append(e.residual, scaled...)
	frames, remaining := Fbank(waveform)
	e.residual = remaining
	return frames
}

// Reset discards any carried waveform residual, used at the start of a
// new utterance.
func (e *FrameExtractor) Reset() {
	e.residual = nil
}
