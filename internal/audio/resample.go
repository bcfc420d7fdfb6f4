package audio

import "math"

// Resample converts samples captured at sourceRate into TargetSampleRate.
// When the rate ratio is a whole number, resampling is plain stride
// decimation (keep every ratio-th sample); otherwise it falls back to
// linear interpolation. Either way the output length is
// ceil(len(samples) / ratio), with the final output position clamped to
// the last input sample, matching the original recorder's resample().
func Resample(samples []float32, sourceRate int) []float32 {
	if sourceRate == TargetSampleRate || len(samples) == 0 {
		return samples
	}

	ratio := float64(sourceRate) / float64(TargetSampleRate)
	targetLen := int(math.Ceil(float64(len(samples)) / ratio))
	out := make([]float32, targetLen)

	if ratio == math.Trunc(ratio) {
		step := int(ratio)
		for i := range out {
			pos := i * step
			if pos >= len(samples) {
				pos = len(samples) - 1
			}
			out[i] = samples[pos]
		}
		return out
	}

	for i := range out {
		srcPos := float64(i) * ratio
		lo := int(math.Floor(srcPos))
		if lo >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := srcPos - float64(lo)
		out[i] = float32((1-frac)*float64(samples[lo]) + frac*float64(samples[lo+1]))
	}
	return out
}
