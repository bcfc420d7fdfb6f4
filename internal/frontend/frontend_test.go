package frontend

import "testing"

func flatFrames(n, width int, fill func(i, j int) float64) [][]float64 {
	frames := make([][]float64, n)
	for i := range frames {
		row := make([]float64, width)
		for j := range row {
			row[j] = fill(i, j)
		}
		frames[i] = row
	}
	return frames
}

func identityCMVN(width int) CMVN {
	means := make([]float64, width)
	vars := make([]float64, width)
	for i := range vars {
		vars[i] = 1
	}
	return CMVN{Means: means, Vars: vars}
}

func TestFeedStacksAndStrides(t *testing.T) {
	const m, n, width = 3, 2, 4
	sf := New(m, n, identityCMVN(m*width))

	frames := flatFrames(7, width, func(i, j int) float64 { return float64(i) })
	out, err := sf.Feed(frames)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}

	// frames 0..6 with m=3,n=2: stacks at offsets 0, 2, 4 -> 3 outputs,
	// leaving frame 6 as residual.
	if len(out) != 3 {
		t.Fatalf("len(out) = %d, want 3", len(out))
	}
	if sf.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", sf.Pending())
	}
	if len(out[0]) != m*width {
		t.Fatalf("len(out[0]) = %d, want %d", len(out[0]), m*width)
	}
}

func TestFeedCarriesResidualAcrossCalls(t *testing.T) {
	const m, n, width = 3, 1, 2
	sf := New(m, n, identityCMVN(m*width))

	out1, err := sf.Feed(flatFrames(2, width, func(i, j int) float64 { return 1 }))
	if err != nil {
		t.Fatal(err)
	}
	if len(out1) != 0 {
		t.Fatalf("len(out1) = %d, want 0 (not enough frames yet)", len(out1))
	}
	if sf.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", sf.Pending())
	}

	out2, err := sf.Feed(flatFrames(1, width, func(i, j int) float64 { return 2 }))
	if err != nil {
		t.Fatal(err)
	}
	if len(out2) != 1 {
		t.Fatalf("len(out2) = %d, want 1", len(out2))
	}
}

func TestResetClearsResidual(t *testing.T) {
	sf := New(4, 1, identityCMVN(4*2))
	sf.Feed(flatFrames(2, 2, func(i, j int) float64 { return 0 }))
	if sf.Pending() == 0 {
		t.Fatal("expected pending frames before reset")
	}
	sf.Reset()
	if sf.Pending() != 0 {
		t.Fatalf("Pending() after Reset() = %d, want 0", sf.Pending())
	}
}

func TestCMVNApply(t *testing.T) {
	c := CMVN{Means: []float64{-1, -2}, Vars: []float64{2, 0.5}}
	x := []float64{2, 4}
	c.Apply(x)
	want := []float64{(2 - 1) * 2, (4 - 2) * 0.5}
	for i := range x {
		if x[i] != want[i] {
			t.Fatalf("x[%d] = %v, want %v", i, x[i], want[i])
		}
	}
}
