package repository

import (
	"context"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/sheets"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// NoteFilter narrows persisted notes. Empty fields match everything.
type NoteFilter struct {
	Company string
	FrameID string
}

func (f NoteFilter) match(company, frameID string) bool {
	if f.Company != "" && company != f.Company {
		return false
	}
	if f.FrameID != "" && frameID != f.FrameID {
		return false
	}
	return true
}

// NoteRepository defines access to the append-only findings table
type NoteRepository interface {
	Append(ctx context.Context, note models.AuditNote) error
	List(ctx context.Context, filter NoteFilter) ([]models.AuditNote, error)
	Companies(ctx context.Context) ([]string, error)
}

type noteRepository struct {
	store sheets.Store
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(store sheets.Store) NoteRepository {
	return &noteRepository{store: store}
}

// Append validates note and writes it as the last row
func (r *noteRepository) Append(ctx context.Context, note models.AuditNote) error {
	if err := note.Validate(); err != nil {
		return err
	}
	return r.store.AppendRow(ctx, sheets.TableNotes, note.Row())
}

// List returns matching notes in table order. Rows that fail validation
// are logged and skipped.
func (r *noteRepository) List(ctx context.Context, filter NoteFilter) ([]models.AuditNote, error) {
	rows, err := r.store.ReadAll(ctx, sheets.TableNotes)
	if err != nil {
		return nil, err
	}
	out := make([]models.AuditNote, 0, len(rows))
	for i, row := range rows {
		if !filter.match(row["company"], row["frame_id"]) {
			continue
		}
		n, err := models.AuditNoteFromRow(row)
		if err != nil {
			logger.Warn("Skipping malformed note row", "row", i+2, "error", err)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// Companies returns distinct company names in first-seen order
func (r *noteRepository) Companies(ctx context.Context) ([]string, error) {
	notes, err := r.List(ctx, NoteFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, n := range notes {
		if !seen[n.Company] {
			seen[n.Company] = true
			out = append(out, n.Company)
		}
	}
	return out, nil
}
