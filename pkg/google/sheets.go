package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSource reads plan rows straight from a Google Sheets spreadsheet.
type SheetsSource struct {
	srv *sheets.Service
}

// NewSheetsSource creates a Sheets service on an authorized HTTP client.
func NewSheetsSource(ctx context.Context, client *http.Client) (*SheetsSource, error) {
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	return &SheetsSource{srv: srv}, nil
}

// Grid returns the raw cell values of readRange. Dates come back as serial
// numbers, the same form an xlsx export carries. An empty range reads the
// whole first sheet.
func (s *SheetsSource) Grid(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if readRange == "" {
		title, err := s.firstSheetTitle(ctx, spreadsheetID)
		if err != nil {
			return nil, err
		}
		readRange = quoteSheetTitle(title)
	}

	resp, err := s.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to read range %s: %w", readRange, err)
	}

	grid := make([][]any, len(resp.Values))
	for i, row := range resp.Values {
		grid[i] = append([]any(nil), row...)
	}
	return grid, nil
}

func (s *SheetsSource) firstSheetTitle(ctx context.Context, spreadsheetID string) (string, error) {
	doc, err := s.srv.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("unable to retrieve spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(doc.Sheets) == 0 || doc.Sheets[0].Properties == nil {
		return "", fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}
	return doc.Sheets[0].Properties.Title, nil
}

// quoteSheetTitle makes a sheet title safe to use as an A1 range.
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
