package imports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

const (
	colModelName      = "model_name"
	colBrand          = "brand"
	colBasePrice      = "base_price"
	colStockQuantity  = "stock_quantity"
	colReservedForB2B = "reserved_for_b2b"
	colCondition      = "condition"
	colSpecifications = "specifications"
)

var requiredColumns = []string{colModelName, colBrand, colBasePrice, colStockQuantity, colCondition}

// record is one data row keyed by normalized header name. problem is set when
// the row cannot be mapped onto the header, such as a CSV line with the wrong
// number of fields.
type record struct {
	cells   map[string]string
	problem string
}

func (r record) get(column string) string {
	return strings.TrimSpace(r.cells[column])
}

func (r record) blank() bool {
	for _, value := range r.cells {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

func normalizeHeader(header string) string {
	header = strings.TrimPrefix(header, "\ufeff")
	return strings.ToLower(strings.TrimSpace(header))
}

// zip maps fields onto headers. Missing trailing fields read as empty.
func zip(headers, fields []string) record {
	rec := record{cells: make(map[string]string, len(headers))}
	for i, header := range headers {
		if header == "" {
			continue
		}
		if i < len(fields) {
			rec.cells[header] = fields[i]
		} else {
			rec.cells[header] = ""
		}
	}
	return rec
}

func parseCSV(data []byte) ([]record, []string, error) {
	reader := gocsv.LazyCSVReader(bytes.NewReader(data))
	if std, ok := reader.(*csv.Reader); ok {
		// ragged rows are reported per row instead of failing the file
		std.FieldsPerRecord = -1
	}
	lines, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil, fmt.Errorf("file has no header row")
	}

	headers := make([]string, len(lines[0]))
	for i, cell := range lines[0] {
		headers[i] = normalizeHeader(cell)
	}

	records := make([]record, 0, len(lines)-1)
	for _, fields := range lines[1:] {
		rec := zip(headers, fields)
		if len(fields) != len(headers) {
			rec.problem = fmt.Sprintf("row has %d fields, expected %d", len(fields), len(headers))
		}
		records = append(records, rec)
	}
	return records, headers, nil
}

func parseXLSX(data []byte) ([]record, []string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("read xlsx: %w", err)
	}
	sheet := book.GetSheetName(1)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows := book.GetRows(sheet)
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("file has no header row")
	}

	headers := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		headers[i] = normalizeHeader(cell)
	}

	records := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, zip(headers, row))
	}
	return records, headers, nil
}

func missingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, header := range headers {
		present[header] = true
	}
	var missing []string
	for _, column := range requiredColumns {
		if !present[column] {
			missing = append(missing, column)
		}
	}
	return missing
}
