package paraformer

import "math"

// addPositionalEncoding adds the streaming Paraformer's sinusoidal position
// encoding to each feature row: the encoding is the concatenation
// [sin(pos*inv) ‖ cos(pos*inv)] over half the feature width, not the
// interleaved even/odd Vaswani layout, with inv[i]=exp(-i*ln(10000)/(dim/2-1))
// and pos counted 1-based from startIdx (the number of core frames already
// consumed by prior chunks), so the encoder sees a continuous position
// sequence across streaming calls rather than restarting from zero every
// chunk.
func addPositionalEncoding(feats [][]float32, startIdx int) [][]float32 {
	if len(feats) == 0 {
		return feats
	}
	dim := len(feats[0])
	half := dim / 2
	logIncrement := math.Log(10000) / (float64(half) - 1)
	invTimescales := make([]float64, half)
	for i := 0; i < half; i++ {
		invTimescales[i] = math.Exp(-float64(i) * logIncrement)
	}

	out := make([][]float32, len(feats))
	for t, row := range feats {
		pos := float64(startIdx + t + 1)
		enc := make([]float32, dim)
		for i := 0; i < half; i++ {
			angle := pos * invTimescales[i]
			enc[i] = row[i] + float32(math.Sin(angle))
			enc[half+i] = row[half+i] + float32(math.Cos(angle))
		}
		out[t] = enc
	}
	return out
}
