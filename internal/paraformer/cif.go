package paraformer

// cifSearch runs Continuous Integrate-and-Fire token boundary detection
// over one chunk's encoder hidden states, continuing the integration and
// accumulator state carried over from the previous chunk (prevHidden,
// prevAlpha) so firing decisions are continuous across streaming calls.
// It returns the concatenated fired acoustic embedding vectors (each of
// length dim) plus the updated carry-over state for the next call.
func cifSearch(hidden []float32, t, dim int, alphas []float32, prevHidden []float32, prevAlpha float32) (acoustic []float32, nextHidden []float32, nextAlpha float32) {
	integrate := prevAlpha
	accumulate := make([]float32, dim)
	copy(accumulate, prevHidden)

	for i := 0; i < t; i++ {
		alpha := alphas[i]
		frame := hidden[i*dim : (i+1)*dim]

		if integrate+alpha < cifThreshold {
			integrate += alpha
			for d := 0; d < dim; d++ {
				accumulate[d] += frame[d] * alpha
			}
			continue
		}

		remain := float32(cifThreshold) - integrate
		fired := make([]float32, dim)
		for d := 0; d < dim; d++ {
			fired[d] = accumulate[d] + frame[d]*remain
		}
		acoustic = append(acoustic, fired...)

		leftoverAlpha := integrate + alpha - cifThreshold
		leftover := make([]float32, dim)
		for d := 0; d < dim; d++ {
			leftover[d] = frame[d] * leftoverAlpha
		}
		accumulate = leftover
		integrate = leftoverAlpha
	}

	return acoustic, accumulate, integrate
}
