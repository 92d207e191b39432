// internal/source/format.go
package source

import (
	"path/filepath"
	"strings"

	"github.com/saintgrid/bulkmail-backend/internal/apperrors"
)

// Format tags how a recipient source should be interpreted. It is resolved
// exactly once, at the upload boundary, so everything downstream works on
// structured input instead of filename strings.
type Format int

const (
	FormatUnknown Format = iota
	FormatSpreadsheet
	FormatDelimitedText
)

func (f Format) String() string {
	switch f {
	case FormatSpreadsheet:
		return "spreadsheet"
	case FormatDelimitedText:
		return "delimited-text"
	}
	return "unknown"
}

// ResolveFormat maps a source filename to its format tag.
func ResolveFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xls":
		return FormatSpreadsheet, nil
	case ".txt", ".csv":
		return FormatDelimitedText, nil
	}
	return FormatUnknown, apperrors.NewUnsupportedFormat(fileName)
}
