package vad

import "math"

// FrameState is the per-frame speech/silence classification before window
// smoothing.
type FrameState int

const (
	FrameSilence FrameState = iota
	FrameSpeech
)

// AudioChangeState describes the transition between consecutive frames'
// window-smoothed states, which is what actually drives Start/End
// emission.
type AudioChangeState int

const (
	StateSpeech2Speech AudioChangeState = iota
	StateSpeech2Silence
	StateSilence2Silence
	StateSilence2Speech
)

// Thresholds governing one frame's raw speech/silence classification,
// matching e2e_vad.rs's get_frame_state.
const (
	noiseFrameNumUsedForSNR = 100.0
	snrThreshold            = -100.0
	decibelThreshold        = -100.0
	speechNoiseThreshold    = 0.6
	speechToNoiseRatio      = 1.0
)

// Event is an utterance boundary emitted by the FSM.
type Event int

const (
	EventNone Event = iota
	EventStart
	EventEnd
)

// Model drives the window-smoothed VAD finite state machine from each
// frame's silence probability (the scoring model's score[0]) and decibel
// level.
type Model struct {
	window WindowDetector

	noiseAverageDecibel float64
}

// NewModel builds an idle Model (not yet in speech).
func NewModel() *Model {
	return &Model{noiseAverageDecibel: decibelThreshold}
}

// frameState classifies one frame from its silence probability pSilence
// (score[0] of the scoring model's output, already a probability, not a
// log-probability) and decibel level. A frame below the decibel floor is
// always silence. Otherwise the frame is speech only if the speech
// probability clears the silence probability by speechNoiseThreshold and
// the frame's SNR and decibel both clear their floors; any other outcome
// returns silence, matching the original's get_frame_state exactly. The
// running noise-floor average is updated only when the probability test
// itself labels the frame silence, not when the SNR or decibel gate vetoes
// a frame the probability test called speech.
func (m *Model) frameState(pSilence float64, decibel float64) FrameState {
	if decibel < decibelThreshold {
		return FrameSilence
	}

	snr := decibel - m.noiseAverageDecibel
	pSpeech := 1.0 - pSilence
	pSilenceLog := math.Log(pSilence) * speechToNoiseRatio
	pSpeechLog := math.Log(pSpeech)

	if math.Exp(pSpeechLog) >= math.Exp(pSilenceLog)+speechNoiseThreshold {
		if snr >= snrThreshold && decibel >= decibelThreshold {
			return FrameSpeech
		}
		return FrameSilence
	}

	if m.noiseAverageDecibel < -99.9 {
		m.noiseAverageDecibel = decibel
	} else {
		m.noiseAverageDecibel = (decibel + m.noiseAverageDecibel*(noiseFrameNumUsedForSNR-1)) / noiseFrameNumUsedForSNR
	}
	return FrameSilence
}

// DetectOneFrame folds in one frame's scoring-model output and decibel
// level, returning the boundary event (if any) this frame produces.
// logits carries the scoring model's per-class output with the silence
// probability at index 0.
func (m *Model) DetectOneFrame(logits []float32, decibel float64) Event {
	state := m.frameState(float64(logits[0]), decibel)

	change := m.window.DetectOneFrame(state == FrameSpeech)

	switch change {
	case StateSilence2Speech:
		return EventStart
	case StateSpeech2Silence:
		m.window.Reset()
		return EventEnd
	}
	return EventNone
}

// InSpeech reports whether the model currently considers itself inside a
// confirmed speech utterance.
func (m *Model) InSpeech() bool { return m.window.preSpeech }
