package frontend

import (
	"encoding/json"
	"fmt"
	"os"
)

// cmvnFile is the on-disk shape of a per-recognizer CMVN statistics file:
// pre-negated means and reciprocal variances, one entry per LFR-stacked
// feature coefficient. The original FunASR distribution ships these as a
// proprietary "am.mvn" text format; since that exact format was never
// retrieved into this pack, each model ships its stats as a small JSON
// sidecar file instead, keeping the numeric content identical.
type cmvnFile struct {
	Means []float64 `json:"means"`
	Vars  []float64 `json:"vars"`
}

// LoadCMVN reads a CMVN statistics sidecar file for one recognizer.
func LoadCMVN(path string) (CMVN, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CMVN{}, fmt.Errorf("frontend: read cmvn file: %w", err)
	}
	var f cmvnFile
	if err := json.Unmarshal(data, &f); err != nil {
		return CMVN{}, fmt.Errorf("frontend: parse cmvn file: %w", err)
	}
	if len(f.Means) != len(f.Vars) {
		return CMVN{}, fmt.Errorf("frontend: cmvn file %s has mismatched means/vars lengths", path)
	}
	return CMVN{Means: f.Means, Vars: f.Vars}, nil
}
