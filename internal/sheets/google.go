package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/auditnote/auditnote-api/pkg/logger"
)

// GoogleStore maps each table to a worksheet of one spreadsheet
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu     sync.Mutex
	sheets map[string]*sheets.SheetProperties
}

// NewGoogleStore connects to the Sheets API
func NewGoogleStore(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleStore, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheets:        make(map[string]*sheets.SheetProperties),
	}, nil
}

func (g *GoogleStore) EnsureTable(ctx context.Context, name string, header []string) error {
	props, err := g.sheetProperties(ctx, name)
	if err != nil {
		return err
	}
	if props == nil {
		props, err = g.addSheet(ctx, name, len(header))
		if err != nil {
			return err
		}
		logger.Info("Created worksheet", "table", name)
	}

	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, a1(name, "1:1")).Context(ctx).Do()
	if err != nil {
		return classify(err)
	}
	var current []string
	if len(resp.Values) > 0 {
		current = stringify(resp.Values[0])
	}
	if headerMatches(current, header) {
		return nil
	}

	if props.GridProperties != nil && props.GridProperties.ColumnCount < int64(len(header)) {
		extra := int64(len(header)) - props.GridProperties.ColumnCount
		_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AppendDimension: &sheets.AppendDimensionRequest{
					SheetId:   props.SheetId,
					Dimension: "COLUMNS",
					Length:    extra,
				},
			}},
		}).Context(ctx).Do()
		if err != nil {
			return classify(err)
		}
		props.GridProperties.ColumnCount += extra
	}

	// Surplus header cells are blanked; data columns are left alone.
	cells := make([]interface{}, 0, len(current))
	for _, h := range header {
		cells = append(cells, h)
	}
	for i := len(header); i < len(current); i++ {
		cells = append(cells, "")
	}
	_, err = g.svc.Spreadsheets.Values.Update(g.spreadsheetID, a1(name, "A1"), &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return classify(err)
}

func (g *GoogleStore) ReadAll(ctx context.Context, name string) ([]Row, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, quote(name)).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	grid := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		grid[i] = stringify(r)
	}
	return toRows(grid), nil
}

func (g *GoogleStore) AppendRow(ctx context.Context, name string, values []string) error {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, a1(name, "A1"), &sheets.ValueRange{
		Values: [][]interface{}{cells},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return classify(err)
}

func (g *GoogleStore) UpdateCell(ctx context.Context, name string, row, col int, value string) error {
	if row < 0 || col < 0 {
		return fmt.Errorf("%w: %s[%d,%d]", ErrOutOfRange, name, row, col)
	}
	cell, err := excelize.CoordinatesToCellName(col+1, row+2)
	if err != nil {
		return err
	}
	_, err = g.svc.Spreadsheets.Values.Update(g.spreadsheetID, a1(name, cell), &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return classify(err)
}

func (g *GoogleStore) sheetProperties(ctx context.Context, name string) (*sheets.SheetProperties, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.sheets[name]; ok {
		return p, nil
	}
	ss, err := g.svc.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			g.sheets[sh.Properties.Title] = sh.Properties
		}
	}
	return g.sheets[name], nil
}

func (g *GoogleStore) addSheet(ctx context.Context, name string, cols int) (*sheets.SheetProperties, error) {
	resp, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: name,
					GridProperties: &sheets.GridProperties{
						RowCount:    1,
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	var props *sheets.SheetProperties
	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil {
		props = resp.Replies[0].AddSheet.Properties
	}
	if props == nil {
		props = &sheets.SheetProperties{Title: name, GridProperties: &sheets.GridProperties{RowCount: 1, ColumnCount: int64(cols)}}
	}

	g.mu.Lock()
	g.sheets[name] = props
	g.mu.Unlock()
	return props, nil
}

// classify tags rate-limit responses so the retry layer can recognise them
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return err
}

func quote(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func a1(name, rng string) string {
	return quote(name) + "!" + rng
}

func stringify(cells []interface{}) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		if s, ok := c.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprint(c)
		}
	}
	return out
}
