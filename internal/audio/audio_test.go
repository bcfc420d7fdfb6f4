package audio

import (
	"math"
	"testing"
)

func TestNormalizeInt16(t *testing.T) {
	in := []int16{0, 32767, -32768}
	out := Normalize(in)
	if math.Abs(float64(out[0])) > 1e-6 {
		t.Fatalf("out[0] = %v, want ~0", out[0])
	}
	if out[1] <= 0.99 || out[1] > 1.0 {
		t.Fatalf("out[1] = %v, want close to 1", out[1])
	}
	if out[2] != -1.0 {
		t.Fatalf("out[2] = %v, want -1", out[2])
	}
}

func TestNormalizeFloatPassthrough(t *testing.T) {
	in := []float32{0.5, -0.5}
	out := Normalize(in)
	if out[0] != 0.5 || out[1] != -0.5 {
		t.Fatalf("Normalize(float32) = %v, want passthrough", out)
	}
}

func TestResampleIdentity(t *testing.T) {
	in := []float32{1, 2, 3}
	out := Resample(in, TargetSampleRate)
	if len(out) != len(in) {
		t.Fatalf("Resample at identity rate changed length: %d vs %d", len(out), len(in))
	}
}

func TestResampleIntegerRatioLength(t *testing.T) {
	in := make([]float32, 48000) // 48kHz -> 16kHz, ratio 3
	out := Resample(in, 48000)
	want := int(math.Ceil(float64(len(in)) / 3))
	if len(out) != want {
		t.Fatalf("len(out) = %d, want %d", len(out), want)
	}
}

func TestResampleNonIntegerRatioLength(t *testing.T) {
	in := make([]float32, 44100)
	out := Resample(in, 44100)
	ratio := 44100.0 / float64(TargetSampleRate)
	want := int(math.Ceil(float64(len(in)) / ratio))
	if len(out) != want {
		t.Fatalf("len(out) = %d, want %d", len(out), want)
	}
}

func TestQueueDropsOldestOnOverflow(t *testing.T) {
	var dropped int
	q := NewQueue(func(n int) { dropped += n })
	q.Push(make([]float32, MaxQueueSamples+100))
	if q.Len() != MaxQueueSamples {
		t.Fatalf("Len() = %d, want %d", q.Len(), MaxQueueSamples)
	}
	if dropped != 100 {
		t.Fatalf("dropped = %d, want 100", dropped)
	}
}

func TestQueueDrainEmptiesQueue(t *testing.T) {
	q := NewQueue(nil)
	q.Push([]float32{1, 2, 3})
	out := q.Drain()
	if len(out) != 3 {
		t.Fatalf("Drain() len = %d, want 3", len(out))
	}
	if q.Len() != 0 {
		t.Fatalf("Len() after Drain() = %d, want 0", q.Len())
	}
}
