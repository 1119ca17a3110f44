package excel

import (
	"context"
	"testing"

	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var headerRow = []interface{}{
	"DATA", "ACFT", "TEMPO AOS", "TRANSFER/PS", "BASE", "PART NUMBER", "INF.",
	"TEMPO LOG MTL", "RANGE", "REQUISIÇÃO", "PREV. DE POUSO.", "RECEBIMENTO",
	"PRIORIDADE", "OBSERVAÇÃO", "MTL UTILIZADO",
}

func buildWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, axis, v))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseWithHeader(t *testing.T) {
	data := buildWorkbook(t,
		headerRow,
		[]interface{}{44927, "PR-XYZ", 0.5, "PS-1", "GRU", "PN-100", "ok", "1:30", "acima de 48h", "8:5", nil, "10:00:00", "AOG", "aguardando", "SIM"},
	)

	records, err := NewParser().Parse(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Nil(t, rec.ID)
	assert.Equal(t, "01/01/2023", rec.StartDate)
	assert.Equal(t, "PR-XYZ", rec.AC)
	assert.Equal(t, "12:00:00", rec.TempoAOS)
	assert.Equal(t, "GRU", rec.Base)
	assert.Equal(t, "01:30:00", rec.TempoMaterial)
	assert.Equal(t, "acima de 48h", rec.Range)
	assert.Equal(t, "08:05:00", rec.HoraReq)
	assert.Equal(t, "", rec.HoraPouso)
	assert.Equal(t, "10:00:00", rec.HoraRec)
	assert.Equal(t, "SIM", rec.MTLUtilizado)
}

func TestParseWithoutHeader(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"05/02/2024", "PR-AAA", nil, nil, "CGH"},
		[]interface{}{"06/02/2024", "PR-BBB", nil, nil, "BSB"},
	)

	records, err := NewParser().Parse(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "05/02/2024", records[0].StartDate)
	assert.Equal(t, "BSB", records[1].Base)
	assert.Equal(t, "", records[1].MTLUtilizado)
}

func TestParseDropsBlankRows(t *testing.T) {
	data := buildWorkbook(t,
		headerRow,
		[]interface{}{"01/01/2024", "PR-AAA"},
		[]interface{}{},
		[]interface{}{},
		[]interface{}{"02/01/2024", "PR-BBB"},
	)

	records, err := NewParser().Parse(context.Background(), data)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseHeaderOnly(t *testing.T) {
	data := buildWorkbook(t, headerRow)

	records, err := NewParser().Parse(context.Background(), data)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseKeepsRowOrder(t *testing.T) {
	data := buildWorkbook(t,
		headerRow,
		[]interface{}{"01/01/2024", "PR-C"},
		[]interface{}{"01/01/2024", "PR-A"},
		[]interface{}{"01/01/2024", "PR-B"},
	)

	records, err := NewParser().Parse(context.Background(), data)
	require.NoError(t, err)

	var fleets []string
	for _, r := range records {
		fleets = append(fleets, r.AC)
	}
	assert.Equal(t, []string{"PR-C", "PR-A", "PR-B"}, fleets)
}

func TestParseGarbage(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), []byte("not a workbook"))

	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().Parse(ctx, buildWorkbook(t, headerRow, []interface{}{"01/01/2024"}))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsHeaderRow(t *testing.T) {
	assert.True(t, IsHeaderRow([]Cell{StringCell("Data do evento"), StringCell("x")}))
	assert.True(t, IsHeaderRow([]Cell{NumberCell(1), StringCell("part number")}))
	assert.False(t, IsHeaderRow([]Cell{StringCell("01/01/2024"), StringCell("PR-XYZ"), NumberCell(44927)}))
	assert.False(t, IsHeaderRow([]Cell{StringCell("VALIDADO")}))
}

func TestRecordsFromGridEmpty(t *testing.T) {
	assert.Empty(t, RecordsFromGrid(nil, false))
}

func TestRecordsFromGridIgnoresExtraColumns(t *testing.T) {
	row := make([]Cell, len(model.Fields)+3)
	row[0] = StringCell("01/01/2024")
	row[len(row)-1] = StringCell("extra")

	records := RecordsFromGrid([][]Cell{row}, false)

	require.Len(t, records, 1)
	assert.Equal(t, "01/01/2024", records[0].StartDate)
	assert.Equal(t, "", records[0].MTLUtilizado)
}
