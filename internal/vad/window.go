// Package vad implements voice activity detection: an FSMN scoring model
// whose per-frame silence probability drives a window-smoothed finite
// state machine that emits utterance Start/End boundaries.
package vad

// windowSizeFrame is the span of recent per-frame speech decisions the
// detector keeps a running sum over.
const windowSizeFrame = 20

// silToSpeechFrmCntThres and speechToSilFrmCntThres are the win_sum
// thresholds a Silence2Speech/Speech2Silence transition confirms at. The
// Rust original reads both from a constants module that was never
// retrieved into this pack; we set them to the Paraformer streaming
// scheme's own overlap constants (CHUNK_SIZE_PRE=5, CHUNK_SIZE=10),
// documented in DESIGN.md.
const (
	silToSpeechFrmCntThres = 5
	speechToSilFrmCntThres = 10
)

// WindowDetector keeps a circular buffer of the last windowSizeFrame
// per-frame speech/silence labels and a running sum over them, confirming
// a Silence2Speech transition once the sum reaches silToSpeechFrmCntThres
// and a Speech2Silence transition once it falls to speechToSilFrmCntThres
// or below.
type WindowDetector struct {
	winSum    int
	winState  [windowSizeFrame]int
	curWinPos int
	preSpeech bool
}

// DetectOneFrame folds in one frame's raw speech decision and returns the
// state transition it produces.
func (w *WindowDetector) DetectOneFrame(isSpeech bool) AudioChangeState {
	cur := 0
	if isSpeech {
		cur = 1
	}
	w.winSum -= w.winState[w.curWinPos]
	w.winSum += cur
	w.winState[w.curWinPos] = cur
	w.curWinPos = (w.curWinPos + 1) % windowSizeFrame

	if !w.preSpeech && w.winSum >= silToSpeechFrmCntThres {
		w.preSpeech = true
		return StateSilence2Speech
	}
	if w.preSpeech && w.winSum <= speechToSilFrmCntThres {
		w.preSpeech = false
		return StateSpeech2Silence
	}
	if w.preSpeech {
		return StateSpeech2Speech
	}
	return StateSilence2Silence
}

// Reset clears the window, used on utterance End: the noise-floor average
// tracked by Model is deliberately left untouched (see SPEC_FULL.md).
func (w *WindowDetector) Reset() {
	*w = WindowDetector{}
}
