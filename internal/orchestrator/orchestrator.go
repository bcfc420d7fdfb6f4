// Package orchestrator ties audio capture, VAD, and the two recognizers
// together into the three-thread model described by the pipeline's
// concurrency design: a device callback thread (owned entirely by
// internal/audio.Capture), a recognition worker loop (Engine.Run, below),
// and a control thread that calls Engine's exported methods to start,
// stop, or reconfigure the pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"

	"asrstream/internal/audio"
	"asrstream/internal/config"
	"asrstream/internal/dsp"
	"asrstream/internal/paraformer"
	"asrstream/internal/sensevoice"
	"asrstream/internal/storage"
	"asrstream/internal/vad"
)

// Kind distinguishes a streaming partial result from a final, higher
// accuracy result for the same utterance.
type Kind int

const (
	Online Kind = iota
	Offline
)

func (k Kind) String() string {
	if k == Offline {
		return "Offline"
	}
	return "Online"
}

// Subtitle is one emitted recognition result.
type Subtitle struct {
	Kind Kind
	Text string
}

// lastContextDuration is how much recently-captured audio is kept around
// to seed a newly confirmed utterance: the VAD's window-smoothing delays
// Start confirmation by a few frames, so this backfills the recognizers
// with the audio they would otherwise have missed at the true onset.
const lastContextDuration = 300 * time.Millisecond
const lastContextSamples = int(lastContextDuration.Seconds() * audio.TargetSampleRate)

// paraformerBatchThreshold triggers a forced intermediate flush of the
// streaming Paraformer's partial text if an utterance runs long without a
// VAD End (preserved exactly as "> 60", not "== 60" — see SPEC_FULL.md).
const paraformerBatchThreshold = 60

// Engine owns every piece of runtime state for one recognition session:
// replacing the original's global singletons with a single constructed
// value, per the module's design notes.
type Engine struct {
	cfg config.Config

	queue   *audio.Queue
	capture *audio.Capture

	vadModel   *vad.Recognizer
	paraformer *paraformer.Recognizer
	sensevoice *sensevoice.Recognizer

	transcripts *storage.TranscriptRepository

	Subtitles chan Subtitle

	stopFlag atomic.Bool

	mu sync.Mutex // guards capture/device swap

	// The seven pieces of state the recognition loop threads across
	// iterations (mirroring the original's main-loop state variables):
	lastContext     []float32 // 1: trailing ring buffer seeding a new utterance
	inSpeech        bool      // 2: whether we're inside a confirmed utterance
	paraformerFrame int       // 3: frames fed to Paraformer since last forced flush
	utteranceBuffer []float32 // 4: full-utterance audio, for the final SenseVoice pass
	onlineText      string    // 5: accumulated streaming partial text for this utterance
	segmentStarted  time.Time // 6: wall-clock time the current utterance began
	// 7: stopFlag (above) is polled once per loop iteration by design,
	// not read just once at loop entry, so a control-thread Stop takes
	// effect within one iteration regardless of queue backlog.
}

// New constructs an Engine from already-validated configuration and opened
// recognizer models.
func New(cfg config.Config, vadModel *vad.Recognizer, pf *paraformer.Recognizer, sv *sensevoice.Recognizer, transcripts *storage.TranscriptRepository) *Engine {
	e := &Engine{
		cfg:         cfg,
		queue:       audio.NewQueue(nil),
		vadModel:    vadModel,
		paraformer:  pf,
		sensevoice:  sv,
		transcripts: transcripts,
		Subtitles:   make(chan Subtitle, 64),
	}
	return e
}

// StartCapture opens a capture device and begins filling the engine's
// sample queue. deviceInfo may be nil to use the platform default device.
func (e *Engine) StartCapture(deviceInfo *malgo.DeviceInfo, sourceRate int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		return fmt.Errorf("orchestrator: capture already started")
	}
	cap, err := audio.Start(deviceInfo, sourceRate, e.queue)
	if err != nil {
		return err
	}
	e.capture = cap
	return nil
}

// SwapDevice stops the current capture device and starts a new one,
// leaving the sample queue (and any in-flight utterance state) untouched:
// the original doesn't implement this at all, since it builds one
// recorder per session; this module adds it per the design notes.
func (e *Engine) SwapDevice(deviceInfo *malgo.DeviceInfo, sourceRate int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		if err := e.capture.Stop(); err != nil {
			return fmt.Errorf("orchestrator: stop old device: %w", err)
		}
		e.capture = nil
	}
	cap, err := audio.Start(deviceInfo, sourceRate, e.queue)
	if err != nil {
		return err
	}
	e.capture = cap
	return nil
}

// Stop sets the stop flag, polled by Run at the top of every loop
// iteration, and halts capture.
func (e *Engine) Stop() error {
	e.stopFlag.Store(true)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		err := e.capture.Stop()
		e.capture = nil
		return err
	}
	return nil
}

// Run is the recognition worker loop: it blocks draining the sample
// queue and running inference until ctx is cancelled or Stop is called.
func (e *Engine) Run(ctx context.Context) error {
	e.stopFlag.Store(false)
	for {
		if e.stopFlag.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		samples := e.queue.Drain()
		if len(samples) == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if err := e.processBatch(ctx, samples); err != nil {
			return err
		}
	}
}

func (e *Engine) processBatch(ctx context.Context, samples []float32) error {
	e.lastContext = appendRing(e.lastContext, samples, lastContextSamples)

	events, err := e.vadModel.Feed(toFloat64(samples))
	if err != nil {
		return fmt.Errorf("orchestrator: vad feed: %w", err)
	}

	for _, ev := range events {
		switch ev {
		case vad.EventStart:
			e.onSpeechStart()
		case vad.EventEnd:
			if err := e.onSpeechEnd(ctx); err != nil {
				return err
			}
		}
	}

	if e.inSpeech {
		e.utteranceBuffer = append(e.utteranceBuffer, samples...)

		text, err := e.paraformer.Feed(toFloat64(samples))
		if err != nil {
			return fmt.Errorf("orchestrator: paraformer feed: %w", err)
		}
		if text != "" {
			e.onlineText += text
			e.emit(ctx, Online, e.onlineText)
		}

		e.paraformerFrame += len(samples) / dsp.FrameShift
		if e.paraformerFrame > paraformerBatchThreshold {
			e.paraformerFrame = 0
			if e.onlineText != "" {
				e.emit(ctx, Online, e.onlineText)
			}
		}
	}

	return nil
}

func (e *Engine) onSpeechStart() {
	e.inSpeech = true
	e.segmentStarted = time.Now()
	e.paraformerFrame = 0
	e.onlineText = ""
	e.paraformer.Reset()

	// Seed the recognizers with the trailing context buffer so audio
	// captured before Start was confirmed isn't lost.
	e.utteranceBuffer = append([]float32(nil), e.lastContext...)
	if _, err := e.paraformer.Feed(toFloat64(e.lastContext)); err != nil {
		// Best-effort seed: a failure here doesn't abort the utterance,
		// later Feed calls still run over the live audio.
		_ = err
	}
}

func (e *Engine) onSpeechEnd(ctx context.Context) error {
	if tail, err := e.paraformer.Flush(); err == nil && tail != "" {
		e.onlineText += tail
	}

	text, err := e.sensevoice.Recognize(toFloat64(e.utteranceBuffer))
	if err != nil {
		return fmt.Errorf("orchestrator: sensevoice recognize: %w", err)
	}
	e.emit(ctx, Offline, text)

	// The VAD's reset() only clears its own window detector (done inside
	// vad.Model.DetectOneFrame on the confirming End frame); the sample
	// queue is never cleared here either, so any backlog bleeds into the
	// next utterance exactly as the original does.
	e.inSpeech = false
	e.utteranceBuffer = nil
	e.onlineText = ""
	e.paraformerFrame = 0
	return nil
}

func (e *Engine) emit(ctx context.Context, kind Kind, text string) {
	if text == "" {
		return
	}
	select {
	case e.Subtitles <- Subtitle{Kind: kind, Text: text}:
	default:
	}
	if e.transcripts != nil {
		_, _ = e.transcripts.Append(ctx, kind.String(), text)
	}
}

func appendRing(ring []float32, in []float32, cap int) []float32 {
	ring = append(ring, in...)
	if over := len(ring) - cap; over > 0 {
		ring = ring[over:]
	}
	return ring
}

func toFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
