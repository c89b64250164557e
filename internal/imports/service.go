package imports

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/logger"
	"github.com/angelmondragon/refurbstock-backend/pkg/metrics"
)

const (
	extCSV  = ".csv"
	extXLSX = ".xlsx"
)

// ItemCreator is the slice of the inventory service used by imports.
type ItemCreator interface {
	CreateItem(ctx context.Context, input inventory.CreateItemInput) (*inventory.ItemDTO, error)
}

// Service ingests spreadsheet uploads into inventory.
type Service interface {
	Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error)
}

// ImportResult summarizes one import run.
type ImportResult struct {
	Filename string      `json:"filename"`
	Imported int         `json:"imported"`
	Failed   int         `json:"failed"`
	Rows     []RowResult `json:"rows"`
}

// RowResult reports the fate of a single data row. Row is 1-based and
// excludes the header.
type RowResult struct {
	Row     int           `json:"row" csv:"row"`
	Outcome enums.Outcome `json:"outcome" csv:"outcome"`
	ItemID  string        `json:"item_id,omitempty" csv:"item_id"`
	Error   string        `json:"error,omitempty" csv:"error"`
}

type service struct {
	items      ItemCreator
	metrics    *metrics.InventoryMetrics
	logg       *logger.Logger
	maxBytes   int64
	archiveDir string
	now        func() time.Time
}

// NewService wires the importer. recorder may be nil.
func NewService(items ItemCreator, cfg config.ImportConfig, recorder *metrics.InventoryMetrics, logg *logger.Logger) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("item creator required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		items:      items,
		metrics:    recorder,
		logg:       logg,
		maxBytes:   cfg.MaxUploadBytes(),
		archiveDir: strings.TrimSpace(cfg.ArchiveDir),
		now:        time.Now,
	}, nil
}

// Import parses the file and creates one item per valid row. Rows fail
// independently; only an unreadable file fails the whole call.
func (s *service) Import(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	ext := strings.ToLower(filepath.Ext(name))
	if ext != extCSV && ext != extXLSX {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid file type").
			WithDetails(map[string]any{"accepted": []string{extCSV, extXLSX}})
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file too large").
			WithDetails(map[string]any{"max_bytes": s.maxBytes})
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"import_file": name})
	if err := s.archive(name, data); err != nil {
		s.logg.Error(ctx, "archive upload", err)
	}

	var (
		records []record
		headers []string
	)
	if ext == extCSV {
		records, headers, err = parseCSV(data)
	} else {
		records, headers, err = parseXLSX(data)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "cannot parse file")
	}
	if len(records) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file contains no data rows")
	}
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required columns").
			WithDetails(map[string]any{"columns": missing})
	}

	result := &ImportResult{Filename: name, Rows: make([]RowResult, 0, len(records))}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "import cancelled")
		}
		if rec.blank() {
			continue
		}
		row := s.importRow(ctx, i+1, rec)
		if row.Outcome == enums.OutcomeSuccess {
			result.Imported++
		} else {
			result.Failed++
		}
		s.metrics.ObserveImportRow(row.Outcome.String())
		result.Rows = append(result.Rows, row)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"imported": result.Imported,
		"failed":   result.Failed,
	}), "import finished")
	return result, nil
}

func (s *service) importRow(ctx context.Context, n int, rec record) RowResult {
	row := RowResult{Row: n}
	input, err := rowInput(rec)
	if rec.problem != "" {
		err = pkgerrors.New(pkgerrors.CodeValidation, rec.problem)
	}
	if err == nil {
		var item *inventory.ItemDTO
		item, err = s.items.CreateItem(ctx, input)
		if err == nil {
			row.Outcome = enums.OutcomeSuccess
			row.ItemID = item.ID.String()
			return row
		}
	}

	row.Outcome = enums.OutcomeError
	row.Error = rowErrorMessage(err)
	rowCtx := s.logg.WithField(ctx, "row", n)
	if pkgerrors.Is(err, pkgerrors.CodeDependency) {
		s.logg.Error(rowCtx, "import row failed", err)
	} else {
		s.logg.Warn(s.logg.WithField(rowCtx, "reason", row.Error), "import row skipped")
	}
	return row
}

// rowInput coerces one record into a create payload. A reservation larger
// than the stock is reset to zero rather than rejected.
func rowInput(rec record) (inventory.CreateItemInput, error) {
	basePrice, err := decimalCell(rec, colBasePrice)
	if err != nil {
		return inventory.CreateItemInput{}, err
	}
	stock, err := intCell(rec, colStockQuantity, false)
	if err != nil {
		return inventory.CreateItemInput{}, err
	}
	reserved, err := intCell(rec, colReservedForB2B, true)
	if err != nil {
		return inventory.CreateItemInput{}, err
	}
	condition, err := enums.ParseCondition(rec.get(colCondition))
	if err != nil {
		return inventory.CreateItemInput{}, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("condition unknown value %q", rec.get(colCondition)))
	}
	if reserved > stock {
		reserved = 0
	}

	return inventory.CreateItemInput{
		ModelName:      rec.get(colModelName),
		Brand:          rec.get(colBrand),
		BasePrice:      basePrice,
		StockQuantity:  stock,
		ReservedForB2B: reserved,
		Condition:      condition,
		Specifications: rec.get(colSpecifications),
	}, nil
}

func numberCell(rec record, column string) (float64, bool, error) {
	raw := rec.get(column)
	if raw == "" {
		return 0, false, nil
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, true, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a number, got %q", column, raw))
	}
	return value, true, nil
}

func decimalCell(rec record, column string) (decimal.Decimal, error) {
	value, present, err := numberCell(rec, column)
	if err != nil {
		return decimal.Zero, err
	}
	if !present {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, column+" is required")
	}
	return decimal.NewFromFloat(value), nil
}

// intCell accepts whole numbers written as floats ("5.0") since spreadsheet
// exports often format counts that way.
func intCell(rec record, column string, optional bool) (int, error) {
	value, present, err := numberCell(rec, column)
	if err != nil {
		return 0, err
	}
	if !present {
		if optional {
			return 0, nil
		}
		return 0, pkgerrors.New(pkgerrors.CodeValidation, column+" is required")
	}
	if value != math.Trunc(value) || math.Abs(value) > math.MaxInt32 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a whole number, got %q", column, rec.get(column)))
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, column+" must be a whole number")
	}
	return n, nil
}

func rowErrorMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.PublicMessage()
	}
	return err.Error()
}

func (s *service) archive(name string, data []byte) error {
	if s.archiveDir == "" {
		return nil
	}
	if err := os.MkdirAll(s.archiveDir, 0o750); err != nil {
		return err
	}
	stamped := s.now().UTC().Format("20060102T150405.000000000") + "_" + name
	return os.WriteFile(filepath.Join(s.archiveDir, stamped), data, 0o640)
}
