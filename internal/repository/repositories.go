package repository

import (
	"errors"

	"github.com/auditnote/auditnote-api/internal/sheets"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// Repositories holds all repository instances
type Repositories struct {
	Auditor     AuditorRepository
	Note        NoteRepository
	Participant ParticipantRepository
}

// NewRepositories creates all repository instances over one table store
func NewRepositories(store sheets.Store) *Repositories {
	return &Repositories{
		Auditor:     NewAuditorRepository(store),
		Note:        NewNoteRepository(store),
		Participant: NewParticipantRepository(store),
	}
}
