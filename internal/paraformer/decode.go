package paraformer

import (
	"strings"

	"asrstream/internal/token"
)

// blankID and eosID are filtered out of the argmax decode: id 0 is the CTC
// blank, id 2 the end-of-sentence marker, neither of which are part of the
// emitted text.
const (
	blankID = 0
	eosID   = 2
)

// argmaxDecode takes the per-position argmax of K decoder logit rows of
// width vocab, dropping blank and end-of-sentence ids.
func argmaxDecode(logits []float32, k, vocab int) []int64 {
	var ids []int64
	for i := 0; i < k; i++ {
		row := logits[i*vocab : (i+1)*vocab]
		best, bestScore := 0, row[0]
		for v := 1; v < vocab; v++ {
			if row[v] > bestScore {
				best, bestScore = v, row[v]
			}
		}
		if best == blankID || best == eosID {
			continue
		}
		ids = append(ids, int64(best))
	}
	return ids
}

func tokensToText(conv *token.Converter, ids []int64) string {
	if len(ids) == 0 {
		return ""
	}
	return strings.Join(conv.IDsToTokens(ids), "")
}
