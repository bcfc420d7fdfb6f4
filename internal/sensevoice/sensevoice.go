package sensevoice

import (
	"fmt"

	"asrstream/internal/dsp"
	"asrstream/internal/frontend"
	"asrstream/internal/onnxrt"
	"asrstream/internal/token"
)

const (
	lfrM = 7
	lfrN = 6

	blankID = 0
)

var inputNames = []string{"speech", "speech_lengths", "language", "textnorm"}
var outputNames = []string{"ctc_logits"}

// Recognizer runs the offline SenseVoice CTC model over a whole utterance
// at once: unlike Paraformer it carries no cross-call cache, only an LFR
// frontend residual for the duration of a single utterance.
type Recognizer struct {
	session  *onnxrt.Session
	frontend *frontend.StreamFrontend
	conv     *token.Converter
	language Language
}

// NewRecognizer opens the SenseVoice ONNX model.
func NewRecognizer(modelPath string, cmvn frontend.CMVN, tokens []string, language Language) (*Recognizer, error) {
	sess, err := onnxrt.NewSession(modelPath, inputNames, outputNames)
	if err != nil {
		return nil, fmt.Errorf("sensevoice: open model: %w", err)
	}
	return &Recognizer{
		session:  sess,
		frontend: frontend.New(lfrM, lfrN, cmvn),
		conv:     token.NewConverter(tokens, ""),
		language: language,
	}, nil
}

// Close releases the underlying ONNX session.
func (r *Recognizer) Close() error {
	return r.session.Close()
}

// SetLanguage changes the decoding language for subsequent Recognize calls.
func (r *Recognizer) SetLanguage(l Language) { r.language = l }

// Recognize runs FBANK extraction, the LFR/CMVN frontend, and a single CTC
// forward pass over an entire utterance's raw samples, returning the
// greedy-decoded transcript.
func (r *Recognizer) Recognize(samples []float64) (string, error) {
	r.frontend.Reset()

	extractor := dsp.NewFrameExtractor()
	frames := extractor.Feed(samples)
	if len(frames) == 0 {
		return "", nil
	}
	featRows := make([][]float64, len(frames))
	for i, f := range frames {
		featRows[i] = f.Feature
	}
	stacked, err := r.frontend.Feed(featRows)
	if err != nil {
		return "", fmt.Errorf("sensevoice: frontend feed: %w", err)
	}
	if len(stacked) == 0 {
		return "", nil
	}

	T := len(stacked)
	dim := len(stacked[0])
	speech := make([]float32, 0, T*dim)
	for _, row := range stacked {
		for _, v := range row {
			speech = append(speech, float32(v))
		}
	}

	inputs := []onnxrt.Tensor{
		onnxrt.F32Tensor("speech", []int64{1, int64(T), int64(dim)}, speech),
		onnxrt.I32Tensor("speech_lengths", []int64{1}, []int32{int32(T)}),
		onnxrt.I32Tensor("language", []int64{1}, []int32{int32(r.language)}),
		onnxrt.I32Tensor("textnorm", []int64{1}, []int32{textnormID}),
	}
	outputs, err := r.session.Run(inputs, [][]int64{nil})
	if err != nil {
		return "", fmt.Errorf("sensevoice: run model: %w", err)
	}

	logits := outputs[0]
	tPrime := len(logits.F32) / vocabFromShape(logits.Shape)
	vocab := vocabFromShape(logits.Shape)
	ids := ctcGreedyDecode(logits.F32, tPrime, vocab)
	return joinTokens(r.conv, ids), nil
}

func vocabFromShape(shape []int64) int {
	if len(shape) == 0 {
		return 1
	}
	return int(shape[len(shape)-1])
}

// ctcGreedyDecode takes the per-frame argmax over tPrime frames of width
// vocab, then collapses consecutive repeats and drops the CTC blank,
// matching standard CTC greedy decoding.
func ctcGreedyDecode(logits []float32, tPrime, vocab int) []int64 {
	var ids []int64
	prev := -1
	for t := 0; t < tPrime; t++ {
		row := logits[t*vocab : (t+1)*vocab]
		best, bestScore := 0, row[0]
		for v := 1; v < vocab; v++ {
			if row[v] > bestScore {
				best, bestScore = v, row[v]
			}
		}
		if best == prev {
			continue
		}
		prev = best
		if best == blankID {
			continue
		}
		ids = append(ids, int64(best))
	}
	return ids
}

func joinTokens(conv *token.Converter, ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	tokens := conv.IDsToTokens(ids)
	var out string
	for _, tok := range tokens {
		out += tok
	}
	return out
}
