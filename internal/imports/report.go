package imports

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
)

// WriteReport writes the per-row outcomes of an import as CSV.
func WriteReport(w io.Writer, result *ImportResult) error {
	if result == nil {
		return fmt.Errorf("import result required")
	}
	rows := result.Rows
	if rows == nil {
		rows = []RowResult{}
	}
	return gocsv.Marshal(&rows, w)
}
