package todo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/neezs/neezspilot/pkg/sheets"
)

// TemplateStore works against a human-curated sheet where each todo occupies
// one row of three columns (done flag, date, task) starting at a configured
// row. New items are inserted at the start row so the most recent entry stays
// on top, matching the sheet's visual convention.
//
// Item ids are the decimal row number at insertion time. The id is therefore
// coupled to physical layout and goes stale when another actor inserts or
// removes rows; callers must treat it as backend specific. Kept as-is for
// compatibility with the existing sheet and front-end.
type TemplateStore struct {
	api           sheets.API
	spreadsheetID string
	sheetName     string
	startRow      int
	colRange      string
}

func NewTemplateStore(api sheets.API, spreadsheetID, sheetName string, startRow int, colRange string) *TemplateStore {
	if startRow < 1 {
		startRow = 1
	}
	if colRange == "" {
		colRange = "A:C"
	}
	return &TemplateStore{
		api:           api,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		startRow:      startRow,
		colRange:      colRange,
	}
}

func (s *TemplateStore) Name() string { return "sheets-template" }

func (s *TemplateStore) checkConfig() error {
	if s.spreadsheetID == "" {
		return &ConfigError{Setting: "TODO_SHEETS_SPREADSHEET_ID"}
	}
	return nil
}

func (s *TemplateStore) a1(rng string) string {
	return sheets.A1(s.sheetName, rng)
}

func (s *TemplateStore) columns() (string, string) {
	first, last, ok := strings.Cut(s.colRange, ":")
	if !ok {
		return "A", "C"
	}
	return first, last
}

func (s *TemplateStore) Add(ctx context.Context, source Source, item NewItem) (Item, error) {
	if err := s.checkConfig(); err != nil {
		return Item{}, err
	}
	text := strings.TrimSpace(item.Text)
	if text == "" {
		return Item{}, &ValidationError{Reason: "todo text must not be empty"}
	}

	sheetID, err := s.api.SheetID(ctx, s.spreadsheetID, s.sheetName)
	if err != nil {
		return Item{}, err
	}

	// Insert a blank row at the start row, shifting everything below down.
	if err := s.api.InsertRows(ctx, s.spreadsheetID, sheetID, int64(s.startRow-1), int64(s.startRow)); err != nil {
		return Item{}, err
	}

	// Best effort: carry the formatting of the row that used to sit at the
	// start row (now one below) into the new row. A failure here must not
	// lose the add itself.
	if err := s.api.CopyRowFormat(ctx, s.spreadsheetID, sheetID, int64(s.startRow), int64(s.startRow-1), 0, 3); err != nil {
		log.WithError(err).Warn("could not copy row formatting for new todo row")
	}

	first, last := s.columns()
	today := time.Now().Format("2006-01-02")
	rng := s.a1(fmt.Sprintf("%s%d:%s%d", first, s.startRow, last, s.startRow))
	values := [][]interface{}{{"FALSE", today, text}}
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, rng, values, true); err != nil {
		return Item{}, err
	}

	return Item{
		ID:        strconv.Itoa(s.startRow),
		Text:      text,
		CreatedAt: parseWhen(today),
		CreatedBy: item.UserID,
		Status:    StatusOpen,
	}, nil
}

func (s *TemplateStore) List(ctx context.Context, _ Source, opts ListOptions) ([]Item, error) {
	if err := s.checkConfig(); err != nil {
		return nil, err
	}
	first, last := s.columns()
	rng := s.a1(fmt.Sprintf("%s%d:%s", first, s.startRow, last))
	values, err := s.api.GetValues(ctx, s.spreadsheetID, rng)
	if err != nil {
		return nil, err
	}

	items := []Item{}
	for i, row := range values {
		done := cellString(row, 0)
		date := cellString(row, 1)
		task := cellString(row, 2)
		if done == "" && date == "" && task == "" {
			continue
		}
		if task == "" {
			continue
		}
		status := StatusOpen
		if strings.EqualFold(done, "TRUE") {
			status = StatusDone
		}
		if !opts.IncludeDone && status != StatusOpen {
			continue
		}
		items = append(items, Item{
			ID:        strconv.Itoa(s.startRow + i),
			Text:      task,
			CreatedAt: parseWhen(date),
			Status:    status,
		})
	}
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[len(items)-opts.Limit:]
	}
	return items, nil
}

func (s *TemplateStore) rowNumber(id string) (int, error) {
	rowNum, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil || rowNum < s.startRow {
		return 0, &ValidationError{Reason: fmt.Sprintf("id %q does not address a todo row", id)}
	}
	return rowNum, nil
}

func (s *TemplateStore) MarkDone(ctx context.Context, id string, done bool) (DoneResult, error) {
	if err := s.checkConfig(); err != nil {
		return DoneResult{}, err
	}
	rowNum, err := s.rowNumber(id)
	if err != nil {
		return DoneResult{}, err
	}

	first, _ := s.columns()
	value := "FALSE"
	status, doneAt := StatusOpen, ""
	if done {
		value = "TRUE"
		status = StatusDone
		doneAt = time.Now().UTC().Format(time.RFC3339)
	}
	rng := s.a1(fmt.Sprintf("%s%d", first, rowNum))
	if err := s.api.UpdateValues(ctx, s.spreadsheetID, rng, [][]interface{}{{value}}, true); err != nil {
		return DoneResult{}, err
	}
	return DoneResult{ID: id, Status: status, DoneAt: doneAt}, nil
}

func (s *TemplateStore) Delete(ctx context.Context, id string) (DeleteResult, error) {
	if err := s.checkConfig(); err != nil {
		return DeleteResult{}, err
	}
	rowNum, err := s.rowNumber(id)
	if err != nil {
		return DeleteResult{}, err
	}
	first, last := s.columns()
	rng := s.a1(fmt.Sprintf("%s%d:%s%d", first, rowNum, last, rowNum))
	if err := s.api.ClearValues(ctx, s.spreadsheetID, rng); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{ID: id, Deleted: true}, nil
}

var _ Store = (*TemplateStore)(nil)
var _ Mutator = (*TemplateStore)(nil)
