package paraformer

import (
	"math"
	"testing"
)

func TestCifSearchFiresOnThresholdCrossing(t *testing.T) {
	dim := 2
	// Three frames of alpha 0.5 each: integrate crosses 1.0 on frame 2.
	hidden := []float32{
		1, 1,
		1, 1,
		1, 1,
	}
	alphas := []float32{0.5, 0.5, 0.5}

	acoustic, nextHidden, nextAlpha := cifSearch(hidden, 3, dim, alphas, make([]float32, dim), 0)
	if len(acoustic) != dim {
		t.Fatalf("len(acoustic) = %d, want %d (one fire)", len(acoustic), dim)
	}
	if nextAlpha <= 0 {
		t.Fatalf("nextAlpha = %v, want > 0 (leftover carried into next chunk)", nextAlpha)
	}
	if len(nextHidden) != dim {
		t.Fatalf("len(nextHidden) = %d, want %d", len(nextHidden), dim)
	}
}

func TestCifSearchCarriesStateAcrossCalls(t *testing.T) {
	dim := 1
	hidden := []float32{1}
	alphas := []float32{0.9}

	_, h1, a1 := cifSearch(hidden, 1, dim, alphas, make([]float32, dim), 0)
	if a1 != 0.9 {
		t.Fatalf("a1 = %v, want 0.9 (no fire yet)", a1)
	}

	acoustic, _, _ := cifSearch(hidden, 1, dim, alphas, h1, a1)
	if len(acoustic) == 0 {
		t.Fatal("expected a fire once the carried integration crosses threshold")
	}
}

func TestZeroBoundaryZeroesEnds(t *testing.T) {
	alphas := make([]float32, 20)
	for i := range alphas {
		alphas[i] = 1
	}
	zeroBoundary(alphas, ChunkSizePre, ChunkSizeBack)
	for i := 0; i < ChunkSizePre; i++ {
		if alphas[i] != 0 {
			t.Fatalf("alphas[%d] = %v, want 0 (pre context)", i, alphas[i])
		}
	}
	for i := len(alphas) - ChunkSizeBack; i < len(alphas); i++ {
		if alphas[i] != 0 {
			t.Fatalf("alphas[%d] = %v, want 0 (back context)", i, alphas[i])
		}
	}
	for i := ChunkSizePre; i < len(alphas)-ChunkSizeBack; i++ {
		if alphas[i] != 1 {
			t.Fatalf("alphas[%d] = %v, want untouched core value of 1", i, alphas[i])
		}
	}
}

func TestArgmaxDecodeDropsBlankAndEOS(t *testing.T) {
	vocab := 4
	// rows: argmax -> blank(0), 1, eos(2), 3
	logits := []float32{
		9, 0, 0, 0,
		0, 9, 0, 0,
		0, 0, 9, 0,
		0, 0, 0, 9,
	}
	ids := argmaxDecode(logits, 4, vocab)
	want := []int64{1, 3}
	if len(ids) != len(want) {
		t.Fatalf("argmaxDecode() = %v, want %v", ids, want)
	}
	for i := range ids {
		if ids[i] != want[i] {
			t.Fatalf("argmaxDecode()[%d] = %v, want %v", i, ids[i], want[i])
		}
	}
}

func TestAddPositionalEncodingOffsetsByStartIdx(t *testing.T) {
	feats := [][]float32{{0, 0, 0, 0}, {0, 0, 0, 0}}
	atZero := addPositionalEncoding(feats, 0)
	atTen := addPositionalEncoding(feats, 10)
	if atZero[0][0] == atTen[0][0] {
		t.Fatal("expected different positional encodings for different startIdx offsets")
	}
}

func TestAddPositionalEncodingConcatenatesSinCos(t *testing.T) {
	// dim=4, half=2: enc layout is [sin(pos*inv0), sin(pos*inv1), cos(pos*inv0), cos(pos*inv1)],
	// not the interleaved even=sin/odd=cos Vaswani form.
	feats := [][]float32{{0, 0, 0, 0}}
	enc := addPositionalEncoding(feats, 0)[0]
	pos := 1.0 // startIdx=0, t=0 -> pos = startIdx+t+1 = 1
	logIncrement := math.Log(10000) / (2.0 - 1.0)
	inv0 := math.Exp(-0 * logIncrement)
	inv1 := math.Exp(-1 * logIncrement)
	wantSin0 := float32(math.Sin(pos * inv0))
	wantSin1 := float32(math.Sin(pos * inv1))
	wantCos0 := float32(math.Cos(pos * inv0))
	wantCos1 := float32(math.Cos(pos * inv1))
	if enc[0] != wantSin0 || enc[1] != wantSin1 {
		t.Fatalf("enc[0:2] = %v, want [%v %v] (sin half first)", enc[0:2], wantSin0, wantSin1)
	}
	if enc[2] != wantCos0 || enc[3] != wantCos1 {
		t.Fatalf("enc[2:4] = %v, want [%v %v] (cos half second)", enc[2:4], wantCos0, wantCos1)
	}
}
