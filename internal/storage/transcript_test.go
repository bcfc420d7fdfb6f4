package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func TestTranscriptAppendAndRecent(t *testing.T) {
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	repo := NewTranscriptRepository(db)
	ctx := context.Background()

	if _, err := repo.Append(ctx, "Online", "hello"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := repo.Append(ctx, "Offline", "hello world"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if recent[0].Text != "hello" || recent[1].Text != "hello world" {
		t.Fatalf("Recent() not in insertion order: %+v", recent)
	}
}
