package dsp

import "math"

// fft computes the in-place radix-2 Cooley-Tukey DFT of a complex signal
// whose length is a power of two.
func fft(re, im []float64) {
	n := len(re)
	if n <= 1 {
		return
	}

	// bit-reversal permutation
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	for length := 2; length <= n; length <<= 1 {
		angle := -2 * math.Pi / float64(length)
		wRe, wIm := math.Cos(angle), math.Sin(angle)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			half := length / 2
			for k := 0; k < half; k++ {
				uRe, uIm := re[start+k], im[start+k]
				vRe := re[start+k+half]*curRe - im[start+k+half]*curIm
				vIm := re[start+k+half]*curIm + im[start+k+half]*curRe

				re[start+k] = uRe + vRe
				im[start+k] = uIm + vIm
				re[start+k+half] = uRe - vRe
				im[start+k+half] = uIm - vIm

				nextRe := curRe*wRe - curIm*wIm
				nextIm := curRe*wIm + curIm*wRe
				curRe, curIm = nextRe, nextIm
			}
		}
	}
}

// powerSpectrum zero-pads samples to n (a power of two), runs an FFT, and
// returns the |X|^2 power at each of the n bins (the full spectrum,
// mirrored bins included, matching the [80,512] mel matrix shape rather
// than a half-spectrum shortcut — see DESIGN.md).
func powerSpectrum(samples []float64, n int) []float64 {
	re := make([]float64, n)
	im := make([]float64, n)
	copy(re, samples)

	fft(re, im)

	power := make([]float64, n)
	for i := 0; i < n; i++ {
		power[i] = re[i]*re[i] + im[i]*im[i]
	}
	return power
}
