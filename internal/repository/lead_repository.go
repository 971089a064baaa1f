package repository

import (
	"context"
	"fmt"

	"google.golang.org/api/sheets/v4"

	"github.com/healthclarity/lead-intake-api/internal/models"
)

// Column positions within the fixed 18-column layout.
const (
	colLeadID      = 0
	colSubmittedAt = 1
	colContact     = 3
	colStatus      = 17
)

// LeadRepository is the boundary to the append-only spreadsheet store.
// Every admission decision re-fetches the full history; there is no
// caching and no read-after-write guarantee beyond what Sheets provides.
type LeadRepository struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewLeadRepository constructs the repository.
func NewLeadRepository(svc *sheets.Service, spreadsheetID, sheetName string) *LeadRepository {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &LeadRepository{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// FetchAll returns every stored row in insertion order. Row 1 holds the
// header and is skipped by the read range.
func (r *LeadRepository) FetchAll(ctx context.Context) ([]models.SheetRow, error) {
	readRange := fmt.Sprintf("%s!A2:R", r.sheetName)
	resp, err := r.svc.Spreadsheets.Values.Get(r.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetch lead rows: %w", err)
	}

	rows := make([]models.SheetRow, 0, len(resp.Values))
	for _, raw := range resp.Values {
		rows = append(rows, models.SheetRow{
			LeadID:      cell(raw, colLeadID),
			SubmittedAt: cell(raw, colSubmittedAt),
			Contact:     cell(raw, colContact),
			Status:      cell(raw, colStatus),
		})
	}
	return rows, nil
}

// Append writes one 18-column row after the last populated row.
func (r *LeadRepository) Append(ctx context.Context, row []interface{}) error {
	if len(row) != models.LeadColumnCount {
		return fmt.Errorf("append lead row: expected %d columns, got %d", models.LeadColumnCount, len(row))
	}

	body := &sheets.ValueRange{Values: [][]interface{}{row}}
	_, err := r.svc.Spreadsheets.Values.
		Append(r.spreadsheetID, fmt.Sprintf("%s!A1", r.sheetName), body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append lead row: %w", err)
	}
	return nil
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) {
		return ""
	}
	if s, ok := row[idx].(string); ok {
		return s
	}
	return fmt.Sprint(row[idx])
}
