package todo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neezs/neezspilot/pkg/sheets"
)

// flatBodyRange bounds the client-side scan. Thousands of rows is the
// expected ceiling for this store; beyond that a real database is the answer.
const flatBodyRange = "A2:H2000"

var flatHeaders = []interface{}{"id", "chatKey", "status", "text", "createdAt", "createdBy", "doneAt", "deleted"}

// FlatStore keeps todos as an append-only log in a spreadsheet sheet with a
// fixed 8-column schema. Rows are never removed, delete only sets a flag.
type FlatStore struct {
	api           sheets.API
	spreadsheetID string
	sheetName     string
}

func NewFlatStore(api sheets.API, spreadsheetID, sheetName string) *FlatStore {
	return &FlatStore{api: api, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

func (s *FlatStore) Name() string { return "sheets" }

func (s *FlatStore) checkConfig() error {
	if s.spreadsheetID == "" {
		return &ConfigError{Setting: "TODO_SHEETS_SPREADSHEET_ID"}
	}
	return nil
}

func (s *FlatStore) a1(rng string) string {
	return sheets.A1(s.sheetName, rng)
}

// ensureHeaders writes the header row if the sheet does not have one yet.
func (s *FlatStore) ensureHeaders(ctx context.Context) error {
	values, err := s.api.GetValues(ctx, s.spreadsheetID, s.a1("A1:H1"))
	if err == nil && len(values) > 0 && len(values[0]) > 0 {
		return nil
	}
	return s.api.UpdateValues(ctx, s.spreadsheetID, s.a1("A1:H1"), [][]interface{}{flatHeaders}, false)
}

func (s *FlatStore) Add(ctx context.Context, source Source, item NewItem) (Item, error) {
	if err := s.checkConfig(); err != nil {
		return Item{}, err
	}
	text := strings.TrimSpace(item.Text)
	if text == "" {
		return Item{}, &ValidationError{Reason: "todo text must not be empty"}
	}
	if err := s.ensureHeaders(ctx); err != nil {
		return Item{}, err
	}

	added := Item{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: time.Now().UTC(),
		CreatedBy: item.UserID,
		Status:    StatusOpen,
	}
	row := []interface{}{
		added.ID,
		ChatKeyOf(source),
		added.Status,
		added.Text,
		added.CreatedAt.Format(time.RFC3339),
		added.CreatedBy,
		"",
		"",
	}
	if err := s.api.AppendValues(ctx, s.spreadsheetID, s.a1("A1:H1"), [][]interface{}{row}); err != nil {
		return Item{}, err
	}
	return added, nil
}

func (s *FlatStore) List(ctx context.Context, source Source, opts ListOptions) ([]Item, error) {
	if err := s.checkConfig(); err != nil {
		return nil, err
	}
	if err := s.ensureHeaders(ctx); err != nil {
		return nil, err
	}
	values, err := s.api.GetValues(ctx, s.spreadsheetID, s.a1(flatBodyRange))
	if err != nil {
		return nil, err
	}

	chatKey := ChatKeyOf(source)
	items := []Item{}
	for _, row := range values {
		it := flatRowToItem(row)
		if it.ID == "" || it.Deleted {
			continue
		}
		if cellString(row, 1) != chatKey {
			continue
		}
		if !opts.IncludeDone && it.Status != StatusOpen {
			continue
		}
		items = append(items, it)
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[len(items)-opts.Limit:]
	}
	return items, nil
}

func (s *FlatStore) MarkDone(ctx context.Context, id string, done bool) (DoneResult, error) {
	if err := s.checkConfig(); err != nil {
		return DoneResult{}, err
	}
	rowNum, err := s.findRowByID(ctx, id)
	if err != nil {
		return DoneResult{}, err
	}

	status, doneAt := StatusOpen, ""
	if done {
		status = StatusDone
		doneAt = time.Now().UTC().Format(time.RFC3339)
	}
	// Touch only the status and doneAt cells, the row may be concurrently
	// edited by hand.
	statusRange := s.a1(fmt.Sprintf("C%d", rowNum))
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, statusRange, [][]interface{}{{status}}, false); err != nil {
		return DoneResult{}, err
	}
	doneAtRange := s.a1(fmt.Sprintf("G%d", rowNum))
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, doneAtRange, [][]interface{}{{doneAt}}, false); err != nil {
		return DoneResult{}, err
	}
	return DoneResult{ID: id, Status: status, DoneAt: doneAt}, nil
}

func (s *FlatStore) Delete(ctx context.Context, id string) (DeleteResult, error) {
	if err := s.checkConfig(); err != nil {
		return DeleteResult{}, err
	}
	rowNum, err := s.findRowByID(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	rng := s.a1(fmt.Sprintf("H%d", rowNum))
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, rng, [][]interface{}{{"1"}}, false); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{ID: id, Deleted: true}, nil
}

// findRowByID resolves an item id to its physical row number with a linear
// scan of the id column. O(rows) per mutation, accepted at this scale.
func (s *FlatStore) findRowByID(ctx context.Context, id string) (int, error) {
	values, err := s.api.GetValues(ctx, s.spreadsheetID, s.a1("A2:A2000"))
	if err != nil {
		return 0, err
	}
	for i, row := range values {
		if cellString(row, 0) == id {
			return 2 + i, nil
		}
	}
	return 0, &NotFoundError{ID: id}
}

func flatRowToItem(row []interface{}) Item {
	deleted := cellString(row, 7)
	return Item{
		ID:        cellString(row, 0),
		Status:    strings.ToLower(cellString(row, 2)),
		Text:      cellString(row, 3),
		CreatedAt: parseWhen(cellString(row, 4)),
		CreatedBy: cellString(row, 5),
		DoneAt:    cellString(row, 6),
		Deleted:   deleted == "1" || strings.EqualFold(deleted, "true"),
	}
}

func cellString(row []interface{}, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	switch v := row[i].(type) {
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseWhen accepts both RFC3339 timestamps and bare dates, which is what
// human-edited sheets tend to contain.
func parseWhen(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

var _ Store = (*FlatStore)(nil)
var _ Mutator = (*FlatStore)(nil)
