package repository

import (
	"context"
	"fmt"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/sheets"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// AuditorRepository defines the interface for credential records
type AuditorRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Auditor, error)
	List(ctx context.Context) ([]models.Auditor, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, auditor *models.Auditor) error
	UpdatePassword(ctx context.Context, email, hash string) error
	UpdateLastLogin(ctx context.Context, email, at string) error
}

type auditorRepository struct {
	store sheets.Store
}

// NewAuditorRepository creates a new auditor repository
func NewAuditorRepository(store sheets.Store) AuditorRepository {
	return &auditorRepository{store: store}
}

func (r *auditorRepository) FindByEmail(ctx context.Context, email string) (*models.Auditor, error) {
	a, _, err := r.find(ctx, email)
	return a, err
}

func (r *auditorRepository) List(ctx context.Context) ([]models.Auditor, error) {
	rows, err := r.store.ReadAll(ctx, sheets.TableAuditors)
	if err != nil {
		return nil, err
	}
	out := make([]models.Auditor, 0, len(rows))
	for i, row := range rows {
		a, err := models.AuditorFromRow(row)
		if err != nil {
			logger.Debug("Skipping auditor row", "row", i, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Count returns the number of data rows, valid or not
func (r *auditorRepository) Count(ctx context.Context) (int, error) {
	rows, err := r.store.ReadAll(ctx, sheets.TableAuditors)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *auditorRepository) Create(ctx context.Context, auditor *models.Auditor) error {
	if err := auditor.Validate(); err != nil {
		return err
	}
	return r.store.AppendRow(ctx, sheets.TableAuditors, auditor.Row())
}

func (r *auditorRepository) UpdatePassword(ctx context.Context, email, hash string) error {
	return r.updateColumn(ctx, email, models.AuditorPasswordColumn, hash)
}

func (r *auditorRepository) UpdateLastLogin(ctx context.Context, email, at string) error {
	return r.updateColumn(ctx, email, models.AuditorLastLoginColumn, at)
}

func (r *auditorRepository) updateColumn(ctx context.Context, email string, col int, value string) error {
	_, idx, err := r.find(ctx, email)
	if err != nil {
		return err
	}
	return r.store.UpdateCell(ctx, sheets.TableAuditors, idx, col, value)
}

// find returns the first auditor matching email and its data row index
func (r *auditorRepository) find(ctx context.Context, email string) (*models.Auditor, int, error) {
	rows, err := r.store.ReadAll(ctx, sheets.TableAuditors)
	if err != nil {
		return nil, -1, err
	}
	for i, row := range rows {
		if !models.SameEmail(row["email"], email) {
			continue
		}
		a, err := models.AuditorFromRow(row)
		if err != nil {
			return nil, -1, err
		}
		return &a, i, nil
	}
	return nil, -1, fmt.Errorf("%w: auditor %s", ErrNotFound, email)
}
