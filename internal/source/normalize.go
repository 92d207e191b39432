// internal/source/normalize.go
package source

import (
	"strings"

	"github.com/saintgrid/bulkmail-backend/internal/model"
)

// Source is one recipient upload after the boundary has tabulated it:
// a format tag plus raw rows. Cell decoding (csv, workbook) happens
// before this point.
type Source struct {
	Format Format
	Rows   [][]string
}

// Normalize turns raw tabular rows into the ordered recipient list.
//
// Spreadsheet sources always treat row 0 as the header. Delimited sources
// sniff the first row: if it names an email column it is a header,
// otherwise rows are positional (column 0 email, column 1 name).
//
// The two modes treat missing emails differently on purpose: headered rows
// with a blank email cell are dropped here, while positional rows degrade
// the missing cell to "" and flow through to the worker, which counts them
// as failures. Either way the enqueue count matches what the worker will
// iterate.
func Normalize(src Source) []model.Recipient {
	rows := src.Rows
	if len(rows) == 0 {
		return nil
	}

	if src.Format == FormatSpreadsheet || isHeaderRow(rows[0]) {
		return normalizeHeadered(rows)
	}
	return normalizePositional(rows)
}

func normalizeHeadered(rows [][]string) []model.Recipient {
	emailCol, nameCol := -1, -1
	for i, cell := range rows[0] {
		switch normalizeHeader(cell) {
		case "email", "e-mail", "email_address":
			if emailCol < 0 {
				emailCol = i
			}
		case "name", "full_name":
			if nameCol < 0 {
				nameCol = i
			}
		}
	}
	if emailCol < 0 {
		return nil
	}

	recipients := []model.Recipient{}
	for _, row := range rows[1:] {
		email := strings.TrimSpace(cellAt(row, emailCol))
		if email == "" {
			continue
		}
		recipients = append(recipients, model.Recipient{
			Email: email,
			Name:  strings.TrimSpace(cellAt(row, nameCol)),
		})
	}
	return recipients
}

func normalizePositional(rows [][]string) []model.Recipient {
	recipients := []model.Recipient{}
	for _, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		recipients = append(recipients, model.Recipient{
			Email: strings.TrimSpace(cellAt(row, 0)),
			Name:  strings.TrimSpace(cellAt(row, 1)),
		})
	}
	return recipients
}

// isHeaderRow reports whether a delimited first row declares columns.
func isHeaderRow(row []string) bool {
	for _, cell := range row {
		switch normalizeHeader(cell) {
		case "email", "e-mail", "email_address":
			return true
		}
	}
	return false
}

func normalizeHeader(cell string) string {
	h := strings.ToLower(strings.TrimSpace(cell))
	return strings.ReplaceAll(h, " ", "_")
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
