package audio

// Sample is any PCM sample representation malgo may hand the capture
// callback.
type Sample interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~float32 | ~float64
}

// Normalize converts a buffer of raw PCM samples of any supported format
// into float32 samples in [-1, 1]. Floating-point formats pass through
// unchanged (no clamping); integer formats are linearly mapped by their
// signed/unsigned full-scale range, mirroring the original recorder's
// per-format normalization.
func Normalize[T Sample](in []T) []float32 {
	out := make([]float32, len(in))
	scale, bias := scaleFor[T]()
	for i, s := range in {
		out[i] = float32((float64(s) - bias) / scale)
	}
	return out
}

func scaleFor[T Sample]() (scale, bias float64) {
	var zero T
	switch any(zero).(type) {
	case float32, float64:
		return 1, 0
	case int8:
		return 128, 0
	case int16:
		return 32768, 0
	case int32:
		return 2147483648, 0
	case int64:
		return 9223372036854775808, 0
	case uint8:
		return 128, 128
	case uint16:
		return 32768, 32768
	case uint32:
		return 2147483648, 2147483648
	default:
		return 1, 0
	}
}
