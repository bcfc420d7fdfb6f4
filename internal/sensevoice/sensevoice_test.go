package sensevoice

import "testing"

func TestCtcGreedyDecodeCollapsesRepeatsAndBlank(t *testing.T) {
	vocab := 3
	// frames: blank, 1, 1, blank, 2, 2, 1
	logits := []float32{
		9, 0, 0,
		0, 9, 0,
		0, 9, 0,
		9, 0, 0,
		0, 0, 9,
		0, 0, 9,
		0, 9, 0,
	}
	ids := ctcGreedyDecode(logits, 7, vocab)
	want := []int64{1, 2, 1}
	if len(ids) != len(want) {
		t.Fatalf("ctcGreedyDecode() = %v, want %v", ids, want)
	}
	for i := range ids {
		if ids[i] != want[i] {
			t.Fatalf("ctcGreedyDecode()[%d] = %v, want %v", i, ids[i], want[i])
		}
	}
}

func TestLanguageStringRoundTrip(t *testing.T) {
	for _, l := range AllLanguages() {
		got, err := ParseLanguage(l.String())
		if err != nil {
			t.Fatalf("ParseLanguage(%q) error = %v", l.String(), err)
		}
		if got != l {
			t.Fatalf("ParseLanguage(%q) = %v, want %v", l.String(), got, l)
		}
	}
}

func TestParseLanguageRejectsUnknown(t *testing.T) {
	if _, err := ParseLanguage("klingon"); err == nil {
		t.Fatal("expected an error for an unknown language")
	}
}
