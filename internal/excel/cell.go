package excel

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/model"

	"github.com/xuri/excelize/v2"
)

type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellString
	CellBool
)

// maxSerial is 9999-12-31, the last date a workbook can hold.
const maxSerial = 2958465

// Cell is one raw grid value as read from the workbook.
type Cell struct {
	Kind CellKind
	Num  float64
	Str  string
	Bool bool
}

func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Num: v} }

func StringCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Str: s}
}

func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// String is the plain string form of the raw value.
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellString:
		return c.Str
	case CellBool:
		return strconv.FormatBool(c.Bool)
	}
	return ""
}

// FormatCell converts a raw cell into the canonical string for a field.
func FormatCell(c Cell, f model.Field, date1904 bool) string {
	switch c.Kind {
	case CellEmpty:
		return ""
	case CellNumber:
		if f == model.FieldStartDate {
			if s, ok := serialToDate(c.Num, date1904); ok {
				return s
			}
			return c.String()
		}
		if model.IsTimeField(f) {
			if s, ok := serialToTime(c.Num); ok {
				return s
			}
		}
		return c.String()
	case CellString:
		if model.IsTimeField(f) {
			return NormalizeTime(c.Str)
		}
		return c.Str
	}
	return c.String()
}

// NormalizeTime pads "H:M" to "HH:MM:00" and "H:M:S" to "HH:MM:SS".
// Any other shape is returned unchanged.
func NormalizeTime(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch len(parts) {
	case 2:
		return padLeft(parts[0]) + ":" + padLeft(parts[1]) + ":00"
	case 3:
		for i := range parts {
			parts[i] = padLeft(parts[i])
		}
		return strings.Join(parts, ":")
	}
	return s
}

func padLeft(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}

func validSerial(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= maxSerial
}

func serialToDate(v float64, date1904 bool) (string, bool) {
	if !validSerial(v) {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(v, date1904)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), t.Year()), true
}

// serialToTime keeps the time-of-day part of a serial. Whole days are
// dropped, so durations of 24h or more wrap.
func serialToTime(v float64) (string, bool) {
	if !validSerial(v) {
		return "", false
	}
	secs := (v - math.Floor(v)) * 86400
	whole := math.Floor(secs)
	if secs-whole > 0.9999 {
		whole++
	}
	total := int(whole) % 86400
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60), true
}
