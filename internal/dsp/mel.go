package dsp

import "math"

// hzToMel and melToHz use the HTK mel scale, the convention the Rust
// original's fbank front end follows.
func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// melFilterbank builds a [numMels][fftSize] triangular filterbank matrix
// over the full FFT power spectrum (not just the fftSize/2+1 unique bins),
// so the matrix can be multiplied directly against powerSpectrum's output
// (see DESIGN.md for why this spans the full spectrum).
func melFilterbank(numMels, fftSize, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	if highFreq <= 0 {
		highFreq = float64(sampleRate) / 2
	}

	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)

	points := make([]float64, numMels+2)
	for i := range points {
		mel := lowMel + (highMel-lowMel)*float64(i)/float64(numMels+1)
		points[i] = melToHz(mel)
	}

	binFreq := func(bin int) float64 {
		return float64(bin) * float64(sampleRate) / float64(fftSize)
	}

	filters := make([][]float64, numMels)
	for m := 0; m < numMels; m++ {
		filters[m] = make([]float64, fftSize)
		left, center, right := points[m], points[m+1], points[m+2]
		for bin := 0; bin < fftSize; bin++ {
			f := binFreq(bin)
			var weight float64
			switch {
			case f < left || f > right:
				weight = 0
			case f <= center:
				if center != left {
					weight = (f - left) / (center - left)
				}
			default:
				if right != center {
					weight = (right - f) / (right - center)
				}
			}
			filters[m][bin] = weight
		}
	}
	return filters
}

// hammingWindow returns the n-sample symmetric Hamming window coefficients.
func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
