package dsp

import (
	"math"
	"testing"
)

func TestFbankFrameCount(t *testing.T) {
	samples := make([]float64, 1600) // 100ms @ 16kHz
	frames, remaining := Fbank(samples)
	want := 1 + (len(samples)-FrameLength)/FrameShift
	if len(frames) != want {
		t.Fatalf("Fbank() produced %d frames, want %d", len(frames), want)
	}
	if wantRemaining := len(samples) - want*FrameShift; len(remaining) != wantRemaining {
		t.Fatalf("Fbank() remaining = %d samples, want %d", len(remaining), wantRemaining)
	}
	for _, f := range frames {
		if len(f.Feature) != NumMels {
			t.Fatalf("frame feature length = %d, want %d", len(f.Feature), NumMels)
		}
	}
}

func TestFbankTooShortYieldsNoFrames(t *testing.T) {
	samples := make([]float64, FrameLength-1)
	frames, remaining := Fbank(samples)
	if frames != nil {
		t.Fatalf("Fbank() on short input = %v, want nil", frames)
	}
	if len(remaining) != len(samples) {
		t.Fatalf("Fbank() on short input returned %d remaining, want all %d samples back", len(remaining), len(samples))
	}
}

func TestFrameExtractorCarriesResidualAcrossCalls(t *testing.T) {
	e := NewFrameExtractor()
	// FrameLength+10 samples split across two Feed calls
	// straddling a frame boundary that neither call alone would complete.
	first := make([]float64, FrameLength/2)
	second := make([]float64, FrameLength/2+10)
	framesFirst := e.Feed(first)
	if len(framesFirst) != 0 {
		t.Fatalf("first Feed() produced %d frames, want 0 (not enough for one window yet)", len(framesFirst))
	}
	framesSecond := e.Feed(second)
	if len(framesSecond) == 0 {
		t.Fatalf("second Feed() produced no frames, want at least one using the carried residual")
	}
}

func TestFrameExtractorResetClearsResidual(t *testing.T) {
	e := NewFrameExtractor()
	e.Feed(make([]float64, FrameLength/2))
	e.Reset()
	if len(e.residual) != 0 {
		t.Fatalf("Reset() left %d residual samples, want 0", len(e.residual))
	}
}

func TestFrameExtractorScalesWaveform(t *testing.T) {
	e := NewFrameExtractor()
	samples := make([]float64, FrameLength)
	for i := range samples {
		samples[i] = 0.5
	}
	frames := e.Feed(samples)
	if len(frames) != 1 {
		t.Fatalf("Feed() produced %d frames, want 1", len(frames))
	}
	// A constant 0.5 signal scaled by 32768 is 16384 per sample, so the
	// window energy is FrameLength*16384^2 (about 110 dB); computed on the
	// unscaled samples it would be FrameLength*0.25 (20 dB).
	want := 10 * math.Log10(FrameLength*16384.0*16384.0+1e-10)
	if math.Abs(frames[0].Decibel-want) > 1e-9 {
		t.Fatalf("Decibel = %v, want %v once scaled to [-32768,32768]", frames[0].Decibel, want)
	}
}

func TestComputeDecibelSilence(t *testing.T) {
	samples := make([]float64, FrameLength)
	db := computeDecibel(samples)
	if db > -90 {
		t.Fatalf("computeDecibel(silence) = %v, want a very low floor value", db)
	}
}

func TestMelFilterbankRowsSumPositive(t *testing.T) {
	for i, row := range filters {
		var sum float64
		for _, w := range row {
			sum += w
		}
		if sum <= 0 {
			t.Fatalf("mel filter row %d sums to %v, want > 0", i, sum)
		}
	}
}

func TestFFTOfImpulseIsFlat(t *testing.T) {
	n := 8
	re := make([]float64, n)
	im := make([]float64, n)
	re[0] = 1
	fft(re, im)
	for i, v := range re {
		if math.Abs(v-1) > 1e-9 {
			t.Fatalf("fft(impulse)[%d] = %v, want 1", i, v)
		}
	}
}
