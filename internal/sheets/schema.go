package sheets

import (
	"context"
	"fmt"

	"github.com/auditnote/auditnote-api/internal/models"
)

// Table names
const (
	TableAuditors     = "Auditors"
	TableNotes        = "Notes"
	TableParticipants = "Participants"
)

// Schema names a table and its header
type Schema struct {
	Name   string
	Header []string
}

// Schemas returns the three tables the application relies on
func Schemas() []Schema {
	return []Schema{
		{Name: TableAuditors, Header: models.AuditorColumns},
		{Name: TableNotes, Header: models.NoteColumns},
		{Name: TableParticipants, Header: models.ParticipantColumns},
	}
}

// EnsureSchemas creates or repairs every table header
func EnsureSchemas(ctx context.Context, store Store) error {
	for _, s := range Schemas() {
		if err := store.EnsureTable(ctx, s.Name, s.Header); err != nil {
			return fmt.Errorf("ensure table %s: %w", s.Name, err)
		}
	}
	return nil
}
