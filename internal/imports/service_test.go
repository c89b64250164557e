package imports

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/refurbstock-backend/internal/inventory"
	"github.com/angelmondragon/refurbstock-backend/pkg/config"
	"github.com/angelmondragon/refurbstock-backend/pkg/db/dbtest"
	"github.com/angelmondragon/refurbstock-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/refurbstock-backend/pkg/errors"
	"github.com/angelmondragon/refurbstock-backend/pkg/metrics"
)

const header = "model_name,brand,base_price,stock_quantity,reserved_for_b2b,condition,specifications\n"

type importEnv struct {
	importer  Service
	inventory inventory.Service
	reg       *prometheus.Registry
}

func newImportEnv(t *testing.T, cfg config.ImportConfig) importEnv {
	t.Helper()
	client := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	recorder := metrics.NewInventoryMetrics(reg)
	inv, err := inventory.NewService(inventory.NewRepository(client.DB()), client, recorder, nil)
	require.NoError(t, err)
	importer, err := NewService(inv, cfg, recorder, nil)
	require.NoError(t, err)
	return importEnv{importer: importer, inventory: inv, reg: reg}
}

func importRowCount(t *testing.T, reg *prometheus.Registry, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, family := range families {
		if family.GetName() != "import_rows_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func requireValidation(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, message, typed.Message())
}

func TestImportCSVClampsReservationAboveStock(t *testing.T) {
	env := newImportEnv(t, config.ImportConfig{})
	ctx := context.Background()

	body := header + "Pixel 7,Google,100,5,10,Good,128GB\n"
	result, err := env.importer.Import(ctx, "stock.csv", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)
	require.Equal(t, 0, result.Failed)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, enums.OutcomeSuccess, result.Rows[0].Outcome)

	item, err := env.inventory.GetItem(ctx, uuid.MustParse(result.Rows[0].ItemID))
	require.NoError(t, err)
	assert.Equal(t, 5, item.StockQuantity)
	assert.Equal(t, 0, item.ReservedForB2B)
	assert.Equal(t, "100.00", item.BasePrice)
	for _, listing := range item.Listings {
		assert.False(t, listing.IsListed)
	}
}

func TestImportIsolatesBadRows(t *testing.T) {
	env := newImportEnv(t, config.ImportConfig{})

	body := header +
		"iPhone 12,Apple,200,3,1,excellent,\n" +
		",Apple,200,3,0,Good,\n" +
		"Galaxy S21,Samsung,abc,3,0,Good,\n" +
		"Galaxy S21,Samsung,150,-2,0,Good,\n" +
		"Galaxy S21,Samsung,150,2,0,Broken,\n" +
		"Moto G,Motorola,45,2.0,,Scrap,\n"
	result, err := env.importer.Import(context.Background(), "batch.CSV", strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 4, result.Failed)
	require.Len(t, result.Rows, 6)

	wantErrors := map[int]string{
		2: "model_name is required",
		3: `base_price must be a number, got "abc"`,
		4: "stock_quantity cannot be negative",
		5: `condition unknown value "Broken"`,
	}
	for _, row := range result.Rows {
		if msg, ok := wantErrors[row.Row]; ok {
			assert.Equal(t, enums.OutcomeError, row.Outcome, "row %d", row.Row)
			assert.Equal(t, msg, row.Error, "row %d", row.Row)
			assert.Empty(t, row.ItemID)
			continue
		}
		assert.Equal(t, enums.OutcomeSuccess, row.Outcome, "row %d", row.Row)
		assert.NotEmpty(t, row.ItemID)
	}

	assert.Equal(t, float64(2), importRowCount(t, env.reg, "success"))
	assert.Equal(t, float64(4), importRowCount(t, env.reg, "error"))
}

func TestImportMatchesHeadersIgnoringCase(t *testing.T) {
	env := newImportEnv(t, config.ImportConfig{})

	body := "\ufeff Model_Name ,BRAND,Base_Price,Stock_Quantity,Condition\n" +
		"Pixel 6,Google,80,4,New\n"
	result, err := env.importer.Import(context.Background(), "stock.csv", strings.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 1, result.Imported)

	item, err := env.inventory.GetItem(context.Background(), uuid.MustParse(result.Rows[0].ItemID))
	require.NoError(t, err)
	assert.Equal(t, "Pixel 6", item.ModelName)
	assert.Equal(t, 0, item.ReservedForB2B)
	assert.Equal(t, "", item.Specifications)
}

func TestImportSkipsBlankRows(t *testing.T) {
	env := newImportEnv(t, config.ImportConfig{})

	body := header + ",,,,,,\n" + "Pixel 7,Google,100,5,0,Good,\n"
	result, err := env.importer.Import(context.Background(), "stock.csv", strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 2, result.Rows[0].Row)
}

func TestImportSkipsRowsWithWrongFieldCount(t *testing.T) {
	env := newImportEnv(t, config.ImportConfig{})

	body := header +
		"Pixel 7,Google,100,5,0,Good,128GB\n" +
		"Broken,Row,50\n" +
		"iPhone 12,Apple,200,3,0,New,64GB\n" +
		"Galaxy S21,Samsung,150,2,0,Good,128GB,extra\n"
	result, err := env.importer.Import(context.Background(), "ragged.csv", strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Rows, 4)
	assert.Equal(t, enums.OutcomeSuccess, result.Rows[0].Outcome)
	assert.Equal(t, enums.OutcomeError, result.Rows[1].Outcome)
	assert.Equal(t, "row has 3 fields, expected 7", result.Rows[1].Error)
	assert.Equal(t, enums.OutcomeSuccess, result.Rows[2].Outcome)
	assert.Equal(t, "row has 8 fields, expected 7", result.Rows[3].Error)

	page, err := env.inventory.ListItems(context.Background(), inventory.ListItemsInput{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
}

func TestImportRejectsUnreadableFiles(t *testing.T) {
	env := newImportEnv(t, config.ImportConfig{MaxUploadMB: 1})
	ctx := context.Background()

	_, err := env.importer.Import(ctx, "stock.txt", strings.NewReader(header))
	requireValidation(t, err, "invalid file type")

	_, err = env.importer.Import(ctx, "stock.csv", strings.NewReader(header))
	requireValidation(t, err, "file contains no data rows")

	_, err = env.importer.Import(ctx, "stock.csv", strings.NewReader("model_name,brand\nPixel,Google\n"))
	requireValidation(t, err, "missing required columns")

	_, err = env.importer.Import(ctx, "stock.xlsx", strings.NewReader("not a workbook"))
	requireValidation(t, err, "cannot parse file")

	big := strings.Repeat("x", (1<<20)+1)
	_, err = env.importer.Import(ctx, "stock.csv", strings.NewReader(big))
	requireValidation(t, err, "file too large")
}

func TestImportXLSX(t *testing.T) {
	env := newImportEnv(t, config.ImportConfig{})

	book := excelize.NewFile()
	rows := [][]string{
		{"model_name", "brand", "base_price", "stock_quantity", "reserved_for_b2b", "condition", "specifications"},
		{"iPhone 13", "Apple", "250.5", "6", "2", "Good", "256GB"},
		{"Nokia 3310", "Nokia", "10", "1", "", "Usable"},
	}
	for r, cells := range rows {
		for c, value := range cells {
			book.SetCellValue("Sheet1", fmt.Sprintf("%c%d", 'A'+c, r+1), value)
		}
	}
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	result, err := env.importer.Import(context.Background(), "phones.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Failed)

	item, err := env.inventory.GetItem(context.Background(), uuid.MustParse(result.Rows[0].ItemID))
	require.NoError(t, err)
	assert.Equal(t, "250.50", item.BasePrice)
	assert.Equal(t, 2, item.ReservedForB2B)
	assert.Empty(t, item.Tags)
}

func TestImportArchivesUpload(t *testing.T) {
	dir := t.TempDir()
	env := newImportEnv(t, config.ImportConfig{ArchiveDir: dir})

	body := header + "Pixel 7,Google,100,5,0,Good,\n"
	_, err := env.importer.Import(context.Background(), "stock.csv", strings.NewReader(body))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasSuffix(entries[0].Name(), "_stock.csv"))
	saved, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, body, string(saved))
}

type failingCreator struct{}

func (failingCreator) CreateItem(context.Context, inventory.CreateItemInput) (*inventory.ItemDTO, error) {
	return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("disk full"), "db: insert inventory item")
}

func TestImportReportsDependencyFailuresPerRow(t *testing.T) {
	importer, err := NewService(failingCreator{}, config.ImportConfig{}, nil, nil)
	require.NoError(t, err)

	body := header + "Pixel 7,Google,100,5,0,Good,\n"
	result, err := importer.Import(context.Background(), "stock.csv", strings.NewReader(body))
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "dependency unavailable", result.Rows[0].Error)
}

func TestWriteReport(t *testing.T) {
	result := &ImportResult{Rows: []RowResult{
		{Row: 1, Outcome: enums.OutcomeSuccess, ItemID: "abc"},
		{Row: 2, Outcome: enums.OutcomeError, Error: "brand is required"},
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, result))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "row,outcome,item_id,error", lines[0])
	assert.Equal(t, "1,success,abc,", lines[1])
	assert.Equal(t, "2,error,,brand is required", lines[2])
}
