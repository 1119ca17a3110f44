package table

import (
	"fmt"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

const (
	DefaultColumnWidth = 150
	MinColumnWidth     = 80
)

type Column struct {
	Field       model.Field `json:"field"`
	DisplayName string      `json:"display_name"`
	Width       int         `json:"width"`
}

// Layout is the presentational column state of one table: position and width
// per column. It never affects filtering, sorting or export.
type Layout struct {
	order        []model.Field
	widths       map[model.Field]int
	defaultWidth int
	minWidth     int
}

func NewLayout(defaultWidth, minWidth int) *Layout {
	if minWidth <= 0 {
		minWidth = MinColumnWidth
	}
	if defaultWidth < minWidth {
		defaultWidth = DefaultColumnWidth
	}

	l := &Layout{
		order:        make([]model.Field, len(model.Fields)),
		widths:       make(map[model.Field]int, len(model.Fields)),
		defaultWidth: defaultWidth,
		minWidth:     minWidth,
	}
	copy(l.order, model.Fields)
	for _, f := range model.Fields {
		l.widths[f] = defaultWidth
	}
	return l
}

// Order returns the current column order.
func (l *Layout) Order() []model.Field {
	out := make([]model.Field, len(l.order))
	copy(out, l.order)
	return out
}

// Move drops the column at index from onto index to, shifting the rest.
func (l *Layout) Move(from, to int) error {
	if from < 0 || from >= len(l.order) {
		return fmt.Errorf("column index %d out of range", from)
	}
	if to < 0 || to >= len(l.order) {
		return fmt.Errorf("column index %d out of range", to)
	}
	if from == to {
		return nil
	}

	col := l.order[from]
	l.order = append(l.order[:from], l.order[from+1:]...)
	l.order = append(l.order[:to], append([]model.Field{col}, l.order[to:]...)...)
	return nil
}

// Resize sets a column width, never below the minimum.
func (l *Layout) Resize(col model.Field, width int) int {
	if width < l.minWidth {
		width = l.minWidth
	}
	l.widths[col] = width
	return width
}

// ResizeBy applies a drag delta to the width the drag started from.
func (l *Layout) ResizeBy(col model.Field, startWidth, delta int) int {
	return l.Resize(col, startWidth+delta)
}

func (l *Layout) Width(col model.Field) int {
	if w, ok := l.widths[col]; ok {
		return w
	}
	return l.defaultWidth
}

func (l *Layout) Columns() []Column {
	cols := make([]Column, len(l.order))
	for i, f := range l.order {
		cols[i] = Column{Field: f, DisplayName: model.DisplayName(f), Width: l.Width(f)}
	}
	return cols
}
