package flags

import (
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/neezs/neezspilot/pkg/sheets"
	"github.com/neezs/neezspilot/pkg/todo"
)

const (
	TodoBackendMemory         = "memory"
	TodoBackendSheets         = "sheets"
	TodoBackendSheetsTemplate = "sheets-template"
)

// TodoFlags select and configure the todo persistence backend.
type TodoFlags struct {
	Backend          string
	DataFile         string
	SpreadsheetID    string
	SheetName        string
	TemplateStartRow int
	TemplateRange    string
}

func NewTodoFlags() *TodoFlags {
	startRow := 4
	if raw := os.Getenv("TODO_TEMPLATE_START_ROW"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			startRow = n
		}
	}
	backend := os.Getenv("TODO_BACKEND")
	if backend == "" {
		backend = TodoBackendMemory
	}
	return &TodoFlags{
		Backend:          backend,
		DataFile:         os.Getenv("TODO_DATA_FILE"),
		SpreadsheetID:    os.Getenv("TODO_SHEETS_SPREADSHEET_ID"),
		SheetName:        os.Getenv("TODO_SHEETS_SHEET_NAME"),
		TemplateStartRow: startRow,
		TemplateRange:    os.Getenv("TODO_TEMPLATE_RANGE"),
	}
}

func (f *TodoFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.Backend, "todo-backend", f.Backend,
		"todo persistence backend: memory, sheets, or sheets-template (env TODO_BACKEND)")
	fs.StringVar(&f.DataFile, "todo-data-file", f.DataFile,
		"JSON file backing the memory store; empty disables persistence across restarts (env TODO_DATA_FILE)")
	fs.StringVar(&f.SpreadsheetID, "todo-spreadsheet-id", f.SpreadsheetID,
		"Google Sheets spreadsheet id for the sheets backends (env TODO_SHEETS_SPREADSHEET_ID)")
	fs.StringVar(&f.SheetName, "todo-sheet-name", f.SheetName,
		"sheet tab name for the sheets backends (env TODO_SHEETS_SHEET_NAME)")
	fs.IntVar(&f.TemplateStartRow, "todo-template-start-row", f.TemplateStartRow,
		"first data row of the template sheet; new items are inserted here (env TODO_TEMPLATE_START_ROW)")
	fs.StringVar(&f.TemplateRange, "todo-template-range", f.TemplateRange,
		"column range of the template sheet, defaults to A:C (env TODO_TEMPLATE_RANGE)")
}

// GetStore builds the configured backend. api may be nil for the memory
// backend; the sheets backends require it.
func (f *TodoFlags) GetStore(api sheets.API) (todo.Store, error) {
	switch f.Backend {
	case TodoBackendMemory, "":
		path := f.DataFile
		if path == "" {
			path = "todos.json"
		}
		return todo.NewFileStore(path), nil
	case TodoBackendSheets:
		if api == nil {
			return nil, errors.New("the sheets todo backend requires Google credentials")
		}
		return todo.NewFlatStore(api, f.SpreadsheetID, f.SheetName), nil
	case TodoBackendSheetsTemplate:
		if api == nil {
			return nil, errors.New("the sheets-template todo backend requires Google credentials")
		}
		return todo.NewTemplateStore(api, f.SpreadsheetID, f.SheetName, f.TemplateStartRow, f.TemplateRange), nil
	default:
		return nil, errors.Errorf("unknown todo backend %q", f.Backend)
	}
}
