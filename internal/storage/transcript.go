package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Utterance is one persisted Subtitle event.
type Utterance struct {
	ID        string
	Kind      string
	Text      string
	CreatedAt time.Time
}

// TranscriptRepository reads and writes the transcript log.
type TranscriptRepository struct {
	db *DB
}

// NewTranscriptRepository builds a repository over an open DB.
func NewTranscriptRepository(db *DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// Append records a new utterance under a freshly generated id.
func (r *TranscriptRepository) Append(ctx context.Context, kind, text string) (Utterance, error) {
	u := Utterance{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		CreatedAt: time.Now(),
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO utterances (id, kind, text, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Kind, u.Text, u.CreatedAt,
	)
	if err != nil {
		return Utterance{}, fmt.Errorf("storage: append utterance: %w", err)
	}
	return u, nil
}

// Recent returns the most recent limit utterances, oldest first.
func (r *TranscriptRepository) Recent(ctx context.Context, limit int) ([]Utterance, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, text, created_at FROM utterances ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: query recent utterances: %w", err)
	}
	defer rows.Close()

	var out []Utterance
	for rows.Next() {
		var u Utterance
		if err := rows.Scan(&u.ID, &u.Kind, &u.Text, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("storage: scan utterance: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
