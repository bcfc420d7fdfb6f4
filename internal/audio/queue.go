// Package audio handles live microphone capture, sample-format
// normalization, resampling to the recognizer's target rate, and a bounded
// queue that decouples the capture callback from the recognition loop.
package audio

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MaxQueueSamples bounds the sample queue at 300 seconds of audio at the
// target sample rate, matching the original recorder's MAX_QUEUE_SIZE.
const MaxQueueSamples = TargetSampleRate * 300

// TargetSampleRate is the sample rate every stage downstream of capture
// operates at.
const TargetSampleRate = 16000

// Queue is a bounded FIFO of normalized float32 samples in [-1, 1], filled
// by the device capture callback and drained by the recognition loop.
// When full, the oldest samples are dropped to make room for new ones:
// the queue is never cleared at utterance boundaries, so backlog
// intentionally bleeds across them (preserved from the original's design).
type Queue struct {
	mu       sync.Mutex
	samples  []float32
	overflow *rate.Limiter
	onDrop   func(dropped int)
}

// NewQueue builds an empty Queue. onDrop, if non-nil, is invoked
// (rate-limited to once per second) whenever Push must drop old samples to
// stay under MaxQueueSamples, so a busy capture loop doesn't spam logs.
func NewQueue(onDrop func(dropped int)) *Queue {
	return &Queue{
		overflow: rate.NewLimiter(rate.Every(time.Second), 1),
		onDrop:   onDrop,
	}
}

// Push appends samples to the queue, dropping the oldest samples first if
// the queue would exceed MaxQueueSamples.
func (q *Queue) Push(samples []float32) {
	q.mu.Lock()
	q.samples = append(q.samples, samples...)
	if over := len(q.samples) - MaxQueueSamples; over > 0 {
		q.samples = q.samples[over:]
		if q.onDrop != nil && q.overflow.Allow() {
			q.onDrop(over)
		}
	}
	q.mu.Unlock()
}

// Drain removes and returns every sample currently queued.
func (q *Queue) Drain() []float32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.samples) == 0 {
		return nil
	}
	out := q.samples
	q.samples = nil
	return out
}

// Len reports the number of samples currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.samples)
}
