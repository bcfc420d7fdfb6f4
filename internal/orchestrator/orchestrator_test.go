package orchestrator

import "testing"

func TestAppendRingCapsLength(t *testing.T) {
	ring := appendRing(nil, []float32{1, 2, 3}, 2)
	if len(ring) != 2 {
		t.Fatalf("len(ring) = %d, want 2", len(ring))
	}
	if ring[0] != 2 || ring[1] != 3 {
		t.Fatalf("ring = %v, want [2 3] (oldest dropped)", ring)
	}
}

func TestAppendRingBelowCapKeepsEverything(t *testing.T) {
	ring := appendRing([]float32{1}, []float32{2}, 10)
	if len(ring) != 2 {
		t.Fatalf("len(ring) = %d, want 2", len(ring))
	}
}

func TestToFloat64Preserves(t *testing.T) {
	out := toFloat64([]float32{1.5, -2.5})
	if out[0] != 1.5 || out[1] != -2.5 {
		t.Fatalf("toFloat64() = %v", out)
	}
}

func TestKindString(t *testing.T) {
	if Online.String() != "Online" {
		t.Fatalf("Online.String() = %q", Online.String())
	}
	if Offline.String() != "Offline" {
		t.Fatalf("Offline.String() = %q", Offline.String())
	}
}
