package mcpclient

import (
	"context"

	"github.com/pkg/errors"
)

// SheetsToolClient wraps the Google Sheets tool server.
type SheetsToolClient struct {
	*Client
}

func NewSheetsToolClient(command string, args, env []string) *SheetsToolClient {
	return &SheetsToolClient{Client: New("NeezsPilot-Sheets-MCP-Client", command, args, env)}
}

type Tab struct {
	SheetID int64  `json:"sheetId"`
	Title   string `json:"title"`
}

type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime,omitempty"`
	WebViewLink  string `json:"webViewLink,omitempty"`
}

type SheetPreview struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

type MonthSummary struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

func (s *SheetsToolClient) ReadRange(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	res, err := s.Call(ctx, "sheets.readRange", map[string]interface{}{
		"spreadsheetId": spreadsheetID,
		"range":         rng,
	})
	if err != nil {
		return nil, err
	}
	if res.IsError {
		return [][]string{}, nil
	}
	var structured struct {
		Values [][]string `json:"values"`
	}
	decodeStructured(res, &structured)
	return structured.Values, nil
}

func (s *SheetsToolClient) ListTabs(ctx context.Context, spreadsheetID string) ([]Tab, error) {
	res, err := s.Call(ctx, "sheets.listTabs", map[string]interface{}{
		"spreadsheetId": spreadsheetID,
	})
	if err != nil {
		return nil, err
	}
	if res.IsError {
		return []Tab{}, nil
	}
	var structured struct {
		Sheets []Tab `json:"sheets"`
	}
	decodeStructured(res, &structured)
	return structured.Sheets, nil
}

func (s *SheetsToolClient) Preview(ctx context.Context, spreadsheetID, sheetName string) (SheetPreview, error) {
	res, err := s.Call(ctx, "sheets.preview", map[string]interface{}{
		"spreadsheetId": spreadsheetID,
		"sheetName":     sheetName,
	})
	if err != nil {
		return SheetPreview{}, err
	}
	if res.IsError {
		return SheetPreview{}, errors.Errorf("preview failed: %s", firstText(res))
	}
	var preview SheetPreview
	decodeStructured(res, &preview)
	return preview, nil
}

func (s *SheetsToolClient) SummaryByMonth(ctx context.Context, spreadsheetID, sheetName string, year, month int) (MonthSummary, error) {
	res, err := s.Call(ctx, "sheets.summaryByMonth", map[string]interface{}{
		"spreadsheetId": spreadsheetID,
		"sheetName":     sheetName,
		"year":          year,
		"month":         month,
	})
	if err != nil {
		return MonthSummary{}, err
	}
	if res.IsError {
		return MonthSummary{}, errors.Errorf("summary failed: %s", firstText(res))
	}
	var summary MonthSummary
	decodeStructured(res, &summary)
	return summary, nil
}

func (s *SheetsToolClient) ListSpreadsheets(ctx context.Context, query string, pageSize int) ([]DriveFile, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	args := map[string]interface{}{"pageSize": pageSize}
	if query != "" {
		args["query"] = query
	}
	res, err := s.Call(ctx, "drive.listSpreadsheets", args)
	if err != nil {
		return nil, err
	}
	if res.IsError {
		return []DriveFile{}, nil
	}
	var structured struct {
		Files []DriveFile `json:"files"`
	}
	decodeStructured(res, &structured)
	return structured.Files, nil
}
