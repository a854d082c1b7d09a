package flags

import (
	"os"

	"github.com/spf13/pflag"
)

// FinanceFlags point /sheet summary at the household finance spreadsheet.
type FinanceFlags struct {
	SpreadsheetID string
	SheetName     string
}

func NewFinanceFlags() *FinanceFlags {
	return &FinanceFlags{
		SpreadsheetID: os.Getenv("FINANCE_SPREADSHEET_ID"),
		SheetName:     os.Getenv("FINANCE_SHEET_NAME"),
	}
}

func (f *FinanceFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.SpreadsheetID, "finance-spreadsheet-id", f.SpreadsheetID,
		"spreadsheet queried by /sheet summary (env FINANCE_SPREADSHEET_ID)")
	fs.StringVar(&f.SheetName, "finance-sheet-name", f.SheetName,
		"sheet tab queried by /sheet summary (env FINANCE_SHEET_NAME)")
}
