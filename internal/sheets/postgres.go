package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type sheetTable struct {
	Name      string `gorm:"primaryKey"`
	Header    string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sheetTable) TableName() string {
	return "sheet_tables"
}

type sheetRow struct {
	ID        uint64 `gorm:"primaryKey"`
	Table     string `gorm:"column:table_name;not null;index"`
	Cells     string `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sheetRow) TableName() string {
	return "sheet_rows"
}

// PostgresStore keeps tables as JSON rows ordered by insertion id. The
// schema is created by database.Migrate.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps an open connection
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) EnsureTable(ctx context.Context, name string, header []string) error {
	encoded, err := json.Marshal(header)
	if err != nil {
		return err
	}

	var t sheetTable
	err = p.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return p.db.WithContext(ctx).Create(&sheetTable{Name: name, Header: string(encoded)}).Error
	case err != nil:
		return err
	}

	var current []string
	if err := json.Unmarshal([]byte(t.Header), &current); err != nil {
		return fmt.Errorf("decode header of %s: %w", name, err)
	}
	if headerMatches(current, header) {
		return nil
	}
	return p.db.WithContext(ctx).Model(&sheetTable{}).Where("name = ?", name).Update("header", string(encoded)).Error
}

func (p *PostgresStore) ReadAll(ctx context.Context, name string) ([]Row, error) {
	header, err := p.header(ctx, p.db, name)
	if err != nil {
		return nil, err
	}

	var rows []sheetRow
	if err := p.db.WithContext(ctx).Where("table_name = ?", name).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	grid := make([][]string, 0, len(rows)+1)
	grid = append(grid, header)
	for _, r := range rows {
		var cells []string
		if err := json.Unmarshal([]byte(r.Cells), &cells); err != nil {
			return nil, fmt.Errorf("decode row %d of %s: %w", r.ID, name, err)
		}
		grid = append(grid, cells)
	}
	return toRows(grid), nil
}

func (p *PostgresStore) AppendRow(ctx context.Context, name string, values []string) error {
	if _, err := p.header(ctx, p.db, name); err != nil {
		return err
	}
	encoded, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return p.db.WithContext(ctx).Create(&sheetRow{Table: name, Cells: string(encoded)}).Error
}

func (p *PostgresStore) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header, err := p.header(ctx, tx, name)
		if err != nil {
			return err
		}
		if row < 0 || col < 0 || col >= len(header) {
			return fmt.Errorf("%w: %s[%d,%d]", ErrOutOfRange, name, row, col)
		}

		var r sheetRow
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("table_name = ?", name).
			Order("id").
			Offset(row).
			Limit(1).
			First(&r).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s[%d,%d]", ErrOutOfRange, name, row, col)
		}
		if err != nil {
			return err
		}

		var cells []string
		if err := json.Unmarshal([]byte(r.Cells), &cells); err != nil {
			return fmt.Errorf("decode row %d of %s: %w", r.ID, name, err)
		}
		for len(cells) <= col {
			cells = append(cells, "")
		}
		cells[col] = value

		encoded, err := json.Marshal(cells)
		if err != nil {
			return err
		}
		return tx.Model(&sheetRow{}).Where("id = ?", r.ID).Update("cells", string(encoded)).Error
	})
}

func (p *PostgresStore) header(ctx context.Context, db *gorm.DB, name string) ([]string, error) {
	var t sheetTable
	err := db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	var header []string
	if err := json.Unmarshal([]byte(t.Header), &header); err != nil {
		return nil, fmt.Errorf("decode header of %s: %w", name, err)
	}
	return header, nil
}
