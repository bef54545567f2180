package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"
)

const defaultSheetName = "Sheet1"

// XLSXStore keeps each table as a worksheet of a local workbook. The
// workbook is saved after every write.
type XLSXStore struct {
	mu    sync.Mutex
	path  string
	file  *excelize.File
	fresh bool
}

// NewXLSXStore opens path, creating the workbook when it does not exist
func NewXLSXStore(path string) (*XLSXStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create workbook directory: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err == nil {
		return &XLSXStore{path: path, file: f}, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return &XLSXStore{path: path, file: excelize.NewFile(), fresh: true}, nil
}

// Close releases the workbook
func (s *XLSXStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

func (s *XLSXStore) EnsureTable(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.file.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx == -1 {
		if err := s.addSheet(name); err != nil {
			return err
		}
	}

	rows, err := s.file.GetRows(name)
	if err != nil {
		return err
	}
	var current []string
	if len(rows) > 0 {
		current = rows[0]
	}
	if headerMatches(current, header) {
		return nil
	}

	if err := s.file.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	for col := len(header); col < len(current); col++ {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := s.file.SetCellStr(name, cell, ""); err != nil {
			return err
		}
	}
	return s.save()
}

func (s *XLSXStore) addSheet(name string) error {
	// A new workbook starts with a placeholder sheet; reuse it for the first table.
	if s.fresh {
		s.fresh = false
		if err := s.file.SetSheetName(defaultSheetName, name); err == nil {
			return nil
		}
	}
	_, err := s.file.NewSheet(name)
	return err
}

func (s *XLSXStore) ReadAll(_ context.Context, name string) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid, err := s.grid(name)
	if err != nil {
		return nil, err
	}
	return toRows(grid), nil
}

func (s *XLSXStore) AppendRow(_ context.Context, name string, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid, err := s.grid(name)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(1, len(grid)+1)
	if err != nil {
		return err
	}
	row := cloneStrings(values)
	if err := s.file.SetSheetRow(name, cell, &row); err != nil {
		return err
	}
	return s.save()
}

func (s *XLSXStore) UpdateCell(_ context.Context, name string, row, col int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid, err := s.grid(name)
	if err != nil {
		return err
	}
	if row < 0 || row+1 >= len(grid) || col < 0 || col >= len(grid[0]) {
		return fmt.Errorf("%w: %s[%d,%d]", ErrOutOfRange, name, row, col)
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+2)
	if err != nil {
		return err
	}
	if err := s.file.SetCellStr(name, cell, value); err != nil {
		return err
	}
	return s.save()
}

func (s *XLSXStore) grid(name string) ([][]string, error) {
	idx, err := s.file.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return s.file.GetRows(name)
}

func (s *XLSXStore) save() error {
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
