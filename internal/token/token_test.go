package token

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestIDsToTokens(t *testing.T) {
	c := NewConverter([]string{"<blank>", "a", "b", "<unk>"}, "")
	got := c.IDsToTokens([]int64{1, 2, 0, 99})
	want := []string{"a", "b", "<blank>", "<unk>"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("IDsToTokens() = %v, want %v", got, want)
	}
}

func TestReadTokensSkipsBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokens.txt")
	content := "<blank> 0\na 1\n\nb 2\n  \nc 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tokens, err := ReadTokens(path)
	if err != nil {
		t.Fatalf("ReadTokens() error = %v", err)
	}
	want := []string{"<blank>", "a", "b", "c"}
	if !reflect.DeepEqual(tokens, want) {
		t.Fatalf("ReadTokens() = %v, want %v", tokens, want)
	}
}
