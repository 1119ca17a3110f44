package excel

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/xuri/excelize/v2"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads the first sheet of an .xlsx workbook into records in row order.
// Any failure aborts the whole file.
func (p *Parser) Parse(ctx context.Context, data []byte) ([]model.Record, error) {
	grid, date1904, err := p.readGrid(ctx, data)
	if err != nil {
		return nil, err
	}

	return RecordsFromGrid(grid, date1904), nil
}

func (p *Parser) readGrid(ctx context.Context, data []byte) ([][]Cell, bool, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, false, errors.NewParseError("open", fmt.Errorf("%w: %v", errors.ErrInvalidFileFormat, err))
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, false, errors.NewParseError("open", errors.ErrEmptyWorkbook)
	}

	date1904 := false
	if props, err := file.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	sheetName := sheets[0]
	rows, err := file.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, false, errors.NewParseError("rows", err)
	}

	grid := make([][]Cell, len(rows))
	for r, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		cells := make([]Cell, len(row))
		for c, raw := range row {
			if raw == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, false, errors.NewParseError("rows", err)
			}
			cellType, err := file.GetCellType(sheetName, axis)
			if err != nil {
				return nil, false, errors.NewParseError("rows", err)
			}
			cells[c] = classify(raw, cellType)
		}
		grid[r] = cells
	}

	return grid, date1904, nil
}

func classify(raw string, cellType excelize.CellType) Cell {
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula,
		excelize.CellTypeError, excelize.CellTypeDate:
		return StringCell(raw)
	case excelize.CellTypeBool:
		return Cell{Kind: CellBool, Bool: raw == "1" || strings.EqualFold(raw, "true")}
	}

	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return NumberCell(v)
	}
	return StringCell(raw)
}

// RecordsFromGrid applies header detection, drops blank rows and maps the
// remaining columns positionally onto the canonical field order.
func RecordsFromGrid(grid [][]Cell, date1904 bool) []model.Record {
	if len(grid) == 0 {
		return []model.Record{}
	}

	rows := grid
	if IsHeaderRow(grid[0]) {
		rows = grid[1:]
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}

		var rec model.Record
		for idx, field := range model.Fields {
			if idx < len(row) {
				rec.Set(field, FormatCell(row[idx], field, date1904))
			}
		}
		records = append(records, rec)
	}

	return records
}

// IsHeaderRow reports whether any text cell contains a known column header.
func IsHeaderRow(row []Cell) bool {
	for _, cell := range row {
		if cell.Kind != CellString {
			continue
		}
		upper := strings.ToUpper(cell.Str)
		for _, field := range model.Fields {
			if strings.Contains(upper, strings.ToUpper(model.DisplayName(field))) {
				return true
			}
		}
	}
	return false
}

func isBlankRow(row []Cell) bool {
	for _, cell := range row {
		if !cell.IsEmpty() {
			return false
		}
	}
	return true
}
