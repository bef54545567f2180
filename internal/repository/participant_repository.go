package repository

import (
	"context"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/sheets"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// ParticipantRepository defines access to the participants table
type ParticipantRepository interface {
	Exists(ctx context.Context, company, frameID string) (bool, error)
	AppendAll(ctx context.Context, participants []models.Participant) error
	List(ctx context.Context, filter NoteFilter) ([]models.Participant, error)
}

type participantRepository struct {
	store sheets.Store
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(store sheets.Store) ParticipantRepository {
	return &participantRepository{store: store}
}

// Exists reports whether any row is already recorded for (company, frameID)
func (r *participantRepository) Exists(ctx context.Context, company, frameID string) (bool, error) {
	rows, err := r.store.ReadAll(ctx, sheets.TableParticipants)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		if row["company"] == company && row["frame_id"] == frameID {
			return true, nil
		}
	}
	return false, nil
}

// AppendAll validates every participant before writing any of them
func (r *participantRepository) AppendAll(ctx context.Context, participants []models.Participant) error {
	for _, p := range participants {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	for _, p := range participants {
		if err := r.store.AppendRow(ctx, sheets.TableParticipants, p.Row()); err != nil {
			return err
		}
	}
	return nil
}

func (r *participantRepository) List(ctx context.Context, filter NoteFilter) ([]models.Participant, error) {
	rows, err := r.store.ReadAll(ctx, sheets.TableParticipants)
	if err != nil {
		return nil, err
	}
	out := make([]models.Participant, 0, len(rows))
	for i, row := range rows {
		if !filter.match(row["company"], row["frame_id"]) {
			continue
		}
		p, err := models.ParticipantFromRow(row)
		if err != nil {
			logger.Warn("Skipping malformed participant row", "row", i+2, "error", err)
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
