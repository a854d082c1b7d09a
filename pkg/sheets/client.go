// Package sheets wraps the small slice of the Google Sheets v4 API the todo
// backends need, so the backends can be exercised against a fake grid in
// tests.
package sheets

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	sheetsapi "google.golang.org/api/sheets/v4"
	"google.golang.org/api/option"
)

// API is the spreadsheet surface used by the flat-table and template todo
// backends. Row and column indexes are zero-based half-open ranges, matching
// the underlying GridRange convention.
type API interface {
	GetValues(ctx context.Context, spreadsheetID, a1Range string) ([][]interface{}, error)
	UpdateValues(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}, userEntered bool) error
	AppendValues(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}) error
	ClearValues(ctx context.Context, spreadsheetID, a1Range string) error
	SheetID(ctx context.Context, spreadsheetID, title string) (int64, error)
	InsertRows(ctx context.Context, spreadsheetID string, sheetID, startRow, endRow int64) error
	CopyRowFormat(ctx context.Context, spreadsheetID string, sheetID, srcRow, dstRow, startCol, endCol int64) error
}

// Service is the real implementation backed by sheets/v4 with service
// account (JWT) credentials.
type Service struct {
	svc *sheetsapi.Service
}

var _ API = (*Service)(nil)

// Credentials locates the service account key: an explicit key file, raw
// JSON from the environment, or the standard GOOGLE_APPLICATION_CREDENTIALS
// fallback, in that order.
type Credentials struct {
	KeyFile string
	KeyJSON string
}

func (c Credentials) json() ([]byte, error) {
	if c.KeyFile != "" {
		buf, err := os.ReadFile(c.KeyFile)
		return buf, errors.Wrapf(err, "reading service account key file %s", c.KeyFile)
	}
	if c.KeyJSON != "" {
		return []byte(c.KeyJSON), nil
	}
	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		buf, err := os.ReadFile(path)
		return buf, errors.Wrapf(err, "reading %s", path)
	}
	return nil, errors.New("no Google service account credentials configured")
}

func NewService(ctx context.Context, creds Credentials) (*Service, error) {
	keyJSON, err := creds.json()
	if err != nil {
		return nil, err
	}
	conf, err := google.JWTConfigFromJSON(keyJSON, sheetsapi.SpreadsheetsScope)
	if err != nil {
		return nil, errors.Wrap(err, "parsing service account key")
	}
	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets service")
	}
	return &Service{svc: svc}, nil
}

func (s *Service) GetValues(ctx context.Context, spreadsheetID, a1Range string) ([][]interface{}, error) {
	res, err := s.svc.Spreadsheets.Values.Get(spreadsheetID, a1Range).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", a1Range)
	}
	return res.Values, nil
}

func (s *Service) UpdateValues(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}, userEntered bool) error {
	input := "RAW"
	if userEntered {
		input = "USER_ENTERED"
	}
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, a1Range, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption(input).
		Context(ctx).Do()
	return errors.Wrapf(err, "updating %s", a1Range)
}

func (s *Service) AppendValues(ctx context.Context, spreadsheetID, a1Range string, values [][]interface{}) error {
	_, err := s.svc.Spreadsheets.Values.Append(spreadsheetID, a1Range, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	return errors.Wrapf(err, "appending to %s", a1Range)
}

func (s *Service) ClearValues(ctx context.Context, spreadsheetID, a1Range string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(spreadsheetID, a1Range, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	return errors.Wrapf(err, "clearing %s", a1Range)
}

func (s *Service) SheetID(ctx context.Context, spreadsheetID, title string) (int64, error) {
	meta, err := s.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets(properties(sheetId,title))").
		Context(ctx).Do()
	if err != nil {
		return 0, errors.Wrap(err, "fetching spreadsheet metadata")
	}
	for _, sh := range meta.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return sh.Properties.SheetId, nil
		}
	}
	return 0, errors.Errorf("no sheet named %q", title)
}

func (s *Service) InsertRows(ctx context.Context, spreadsheetID string, sheetID, startRow, endRow int64) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			InsertDimension: &sheetsapi.InsertDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: startRow,
					EndIndex:   endRow,
				},
				InheritFromBefore: false,
			},
		}},
	}).Context(ctx).Do()
	return errors.Wrap(err, "inserting rows")
}

func (s *Service) CopyRowFormat(ctx context.Context, spreadsheetID string, sheetID, srcRow, dstRow, startCol, endCol int64) error {
	_, err := s.svc.Spreadsheets.BatchUpdate(spreadsheetID, &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			CopyPaste: &sheetsapi.CopyPasteRequest{
				Source: &sheetsapi.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    srcRow,
					EndRowIndex:      srcRow + 1,
					StartColumnIndex: startCol,
					EndColumnIndex:   endCol,
				},
				Destination: &sheetsapi.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    dstRow,
					EndRowIndex:      dstRow + 1,
					StartColumnIndex: startCol,
					EndColumnIndex:   endCol,
				},
				PasteType: "PASTE_FORMAT",
			},
		}},
	}).Context(ctx).Do()
	return errors.Wrap(err, "copying row format")
}

var plainSheetName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// A1 builds a sheet-qualified A1 range, quoting the sheet title when needed.
func A1(sheetName, rng string) string {
	if plainSheetName.MatchString(sheetName) {
		return sheetName + "!" + rng
	}
	return "'" + strings.ReplaceAll(sheetName, "'", "''") + "'!" + rng
}
