// Package paraformer implements the streaming Paraformer recognizer: a
// 5+10+5 overlap-chunk encoder/decoder scheme with CIF (Continuous
// Integrate-and-Fire) token boundary detection and an FSMN decoder cache
// carried across chunks.
package paraformer

import (
	"fmt"
	"math"

	"asrstream/internal/dsp"
	"asrstream/internal/frontend"
	"asrstream/internal/onnxrt"
	"asrstream/internal/token"
)

const (
	// ChunkSizePre and ChunkSizeBack are lookback/lookahead context frames
	// around the ChunkSize frames actually emitted each step. These are
	// explicit streaming-schedule policy constants (not a property of the
	// encoder model itself), per the module's design notes.
	ChunkSizePre  = 5
	ChunkSizeBack = 5
	ChunkSize     = 10

	outputSize = 512
	fsmnLayer  = 16
	fsmnLOrder = 10

	cifThreshold = 1.0

	lfrM = 7
	lfrN = 6
)

var encoderInputs = []string{"speech", "speech_lengths"}
var encoderOutputs = []string{"enc", "enc_len", "alphas"}

func decoderInputs() []string {
	names := []string{"enc", "enc_len", "acoustic_embeds", "acoustic_embeds_len"}
	for i := 0; i < fsmnLayer; i++ {
		names = append(names, fmt.Sprintf("in_cache_%d", i))
	}
	return names
}

func decoderOutputs() []string {
	names := []string{"logits"}
	for i := 0; i < fsmnLayer; i++ {
		names = append(names, fmt.Sprintf("out_cache_%d", i))
	}
	return names
}

// Cache holds all state carried between streaming Feed calls: the raw
// LFR-stacked feature backlog awaiting a full 5+10+5 window, the CIF
// integration remainder, and the FSMN decoder cache.
type Cache struct {
	feats       [][]float32
	startIdx    int
	cifHidden   []float32
	cifAlpha    float32
	decoderFSMN [fsmnLayer][]float32
}

func newCache() *Cache {
	c := &Cache{cifHidden: make([]float32, outputSize)}
	c.resetDecoderFSMN()
	return c
}

func (c *Cache) resetDecoderFSMN() {
	for i := range c.decoderFSMN {
		c.decoderFSMN[i] = make([]float32, outputSize*fsmnLOrder)
	}
}

// Recognizer runs the streaming Paraformer encoder, CIF, and decoder.
type Recognizer struct {
	encoder   *onnxrt.Session
	decoder   *onnxrt.Session
	extractor *dsp.FrameExtractor
	frontend  *frontend.StreamFrontend
	conv      *token.Converter
	cache     *Cache
}

// NewRecognizer opens the paraformer encoder/decoder ONNX models.
func NewRecognizer(encoderPath, decoderPath string, cmvn frontend.CMVN, tokens []string) (*Recognizer, error) {
	enc, err := onnxrt.NewSession(encoderPath, encoderInputs, encoderOutputs)
	if err != nil {
		return nil, fmt.Errorf("paraformer: open encoder: %w", err)
	}
	dec, err := onnxrt.NewSession(decoderPath, decoderInputs(), decoderOutputs())
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("paraformer: open decoder: %w", err)
	}
	return &Recognizer{
		encoder:   enc,
		decoder:   dec,
		extractor: dsp.NewFrameExtractor(),
		frontend:  frontend.New(lfrM, lfrN, cmvn),
		conv:      token.NewConverter(tokens, ""),
		cache:     newCache(),
	}, nil
}

// Close releases the ONNX sessions.
func (r *Recognizer) Close() error {
	err1 := r.encoder.Close()
	err2 := r.decoder.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// Reset clears all carried state, used at the start of a new utterance.
func (r *Recognizer) Reset() {
	r.extractor.Reset()
	r.frontend.Reset()
	r.cache = newCache()
}

// Feed pushes newly captured PCM samples through FBANK extraction and the
// LFR/CMVN frontend, running the encoder/CIF/decoder pipeline on every
// complete 5+10+5 window this produces, and returns the text emitted this
// call (may be empty).
func (r *Recognizer) Feed(samples []float64) (string, error) {
	frames := r.extractor.Feed(samples)
	if len(frames) == 0 {
		return "", nil
	}
	featRows := make([][]float64, len(frames))
	for i, f := range frames {
		featRows[i] = f.Feature
	}
	stacked, err := r.frontend.Feed(featRows)
	if err != nil {
		return "", fmt.Errorf("paraformer: frontend feed: %w", err)
	}
	if len(stacked) == 0 {
		return "", nil
	}

	for _, row := range stacked {
		f32 := make([]float32, len(row))
		for i, v := range row {
			f32[i] = float32(v)
		}
		r.cache.feats = append(r.cache.feats, f32)
	}

	var text string
	window := ChunkSizePre + ChunkSize + ChunkSizeBack
	for len(r.cache.feats) >= window {
		chunk, err := r.stepChunk(r.cache.feats[:window])
		if err != nil {
			return "", err
		}
		text += chunk
		r.cache.feats = r.cache.feats[ChunkSize:]
	}
	return text, nil
}

// Flush runs a final, possibly short, trailing chunk when an utterance
// ends with leftover buffered frames (fewer than a full 5+10+5 window).
func (r *Recognizer) Flush() (string, error) {
	if len(r.cache.feats) == 0 {
		return "", nil
	}
	text, err := r.stepChunk(r.cache.feats)
	r.cache.feats = nil
	return text, err
}

func (r *Recognizer) stepChunk(feats [][]float32) (string, error) {
	scaled := scaleFeatures(feats, float32(math.Sqrt(float64(outputSize))))
	withPos := addPositionalEncoding(scaled, r.cache.startIdx)
	T := len(withPos)
	dim := outputSize
	speech := make([]float32, 0, T*len(feats[0]))
	for _, row := range withPos {
		speech = append(speech, row...)
	}

	encOut, err := r.encoder.Run(
		[]onnxrt.Tensor{
			onnxrt.F32Tensor("speech", []int64{1, int64(T), int64(len(feats[0]))}, speech),
			onnxrt.I32Tensor("speech_lengths", []int64{1}, []int32{int32(T)}),
		},
		[][]int64{
			{1, int64(T), int64(dim)},
			nil,
			{1, int64(T)},
		},
	)
	if err != nil {
		return "", fmt.Errorf("paraformer: run encoder: %w", err)
	}

	enc := encOut[0]
	encLen := encOut[1]
	alphas := encOut[2].F32

	zeroBoundary(alphas, ChunkSizePre, ChunkSizeBack)

	acoustic, cifHidden, cifAlpha := cifSearch(enc.F32, int(T), dim, alphas, r.cache.cifHidden, r.cache.cifAlpha)
	r.cache.cifHidden = cifHidden
	r.cache.cifAlpha = cifAlpha
	r.cache.startIdx += ChunkSize

	if len(acoustic) == 0 {
		return "", nil
	}
	K := len(acoustic) / dim

	decInputs := []onnxrt.Tensor{
		onnxrt.F32Tensor("enc", enc.Shape, enc.F32),
		onnxrt.I32Tensor("enc_len", encLen.Shape, toI32(encLen.F32)),
		onnxrt.F32Tensor("acoustic_embeds", []int64{1, int64(K), int64(dim)}, acoustic),
		onnxrt.I32Tensor("acoustic_embeds_len", []int64{1}, []int32{int32(K)}),
	}
	// logits' vocab dimension is model-defined; let the runtime infer it.
	outShapes := [][]int64{nil}
	for i := 0; i < fsmnLayer; i++ {
		decInputs = append(decInputs, onnxrt.F32Tensor(fmt.Sprintf("in_cache_%d", i), []int64{1, int64(outputSize), int64(fsmnLOrder)}, r.cache.decoderFSMN[i]))
		outShapes = append(outShapes, []int64{1, int64(outputSize), int64(fsmnLOrder)})
	}

	decOut, err := r.decoder.Run(decInputs, outShapes)
	if err != nil {
		return "", fmt.Errorf("paraformer: run decoder: %w", err)
	}

	logits := decOut[0]
	for i := 0; i < fsmnLayer; i++ {
		r.cache.decoderFSMN[i] = decOut[i+1].F32
	}

	vocab := len(logits.F32) / K
	ids := argmaxDecode(logits.F32, K, vocab)
	return tokensToText(r.conv, ids), nil
}

// scaleFeatures multiplies every feature value by factor, matching the
// encoder's own input scaling (feats *= sqrt(encoder_output_size)) applied
// before position encoding.
func scaleFeatures(feats [][]float32, factor float32) [][]float32 {
	out := make([][]float32, len(feats))
	for i, row := range feats {
		scaled := make([]float32, len(row))
		for j, v := range row {
			scaled[j] = v * factor
		}
		out[i] = scaled
	}
	return out
}

func toI32(f []float32) []int32 {
	out := make([]int32, len(f))
	for i, v := range f {
		out[i] = int32(v)
	}
	return out
}

// zeroBoundary zeroes the first pre and last back entries of alphas,
// treating the lookback/lookahead context as non-emitting: CIF integration
// only ever fires on the chunk's ChunkSize core frames.
func zeroBoundary(alphas []float32, pre, back int) {
	for i := 0; i < pre && i < len(alphas); i++ {
		alphas[i] = 0
	}
	for i := len(alphas) - back; i < len(alphas); i++ {
		if i >= 0 {
			alphas[i] = 0
		}
	}
}
