package table

import (
	"sort"
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"
)

type Direction int

const (
	Ascending  Direction = 1
	Descending Direction = -1
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type SortState struct {
	Column    model.Field `json:"column"`
	Direction Direction   `json:"direction"`
}

// PageSizeAll shows every row on a single page.
const PageSizeAll = 0

var PageSizes = []int{10, 25, 50, 100}

const DefaultPageSize = 10

func ValidPageSize(n int) bool {
	if n == PageSizeAll {
		return true
	}
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}

type PageView struct {
	Rows         []model.Record `json:"rows"`
	Page         int            `json:"page"`
	TotalPages   int            `json:"total_pages"`
	TotalRows    int            `json:"total_rows"`
	PageSize     int            `json:"page_size"`
	Query        string         `json:"query"`
	FilterColumn model.Field    `json:"filter_column,omitempty"`
	FilterValue  string         `json:"filter_value,omitempty"`
	Sort         SortState      `json:"sort"`
	Columns      []Column       `json:"columns"`
}

// Controller is the client-side state of the analytic table: search, one
// column filter, single-column sort, pagination and column layout over
// whatever record subset it is given. It is not safe for concurrent use.
type Controller struct {
	data         []model.Record
	query        string
	filterColumn model.Field
	filterValue  string
	sort         SortState
	page         int
	pageSize     int
	layout       *Layout
}

func NewController(pageSize int, layout *Layout) *Controller {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	if layout == nil {
		layout = NewLayout(DefaultColumnWidth, MinColumnWidth)
	}
	return &Controller{
		sort:     SortState{Column: model.FieldStartDate, Direction: Ascending},
		page:     1,
		pageSize: pageSize,
		layout:   layout,
	}
}

// SetData replaces the subset shown by the table. The current page is kept
// but clamped to the new page count.
func (c *Controller) SetData(records []model.Record) {
	c.data = records
	c.page = c.clamp(c.page, len(c.Rows()))
}

func (c *Controller) Layout() *Layout {
	return c.layout
}

func (c *Controller) Search(query string) {
	c.query = query
	c.page = 1
}

func (c *Controller) FilterColumn(col string, value string) error {
	if col == "" {
		c.ClearFilter()
		return nil
	}
	field, ok := model.ParseField(col)
	if !ok {
		return errors.ValidationError{Field: "column", Value: col, Message: "unknown column"}
	}
	c.filterColumn = field
	c.filterValue = value
	c.page = 1
	return nil
}

func (c *Controller) ClearFilter() {
	c.filterColumn = ""
	c.filterValue = ""
	c.page = 1
}

// ToggleSort reverses the direction on the current column, otherwise sorts
// the new column ascending.
func (c *Controller) ToggleSort(col string) error {
	field, ok := model.ParseField(col)
	if !ok {
		return errors.ValidationError{Field: "column", Value: col, Message: "unknown column"}
	}
	if c.sort.Column == field {
		c.sort.Direction = -c.sort.Direction
		return nil
	}
	c.sort = SortState{Column: field, Direction: Ascending}
	return nil
}

func (c *Controller) Sort() SortState {
	return c.sort
}

func (c *Controller) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return errors.ValidationError{Field: "page_size", Value: n, Message: "must be 10, 25, 50, 100 or 0 for all"}
	}
	c.pageSize = n
	c.page = 1
	return nil
}

// SetPage moves to page p, clamped to the available pages.
func (c *Controller) SetPage(p int) int {
	c.page = c.clamp(p, len(c.Rows()))
	return c.page
}

func (c *Controller) totalPages(n int) int {
	if c.pageSize == PageSizeAll || n == 0 {
		return 1
	}
	return (n + c.pageSize - 1) / c.pageSize
}

func (c *Controller) clamp(p, n int) int {
	if p < 1 {
		return 1
	}
	if last := c.totalPages(n); p > last {
		return last
	}
	return p
}

// Rows returns the searched, filtered and sorted subset across all pages.
func (c *Controller) Rows() []model.Record {
	rows := make([]model.Record, 0, len(c.data))

	q := strings.ToLower(c.query)
	fv := strings.ToLower(c.filterValue)
	columns := c.layout.Order()

	for _, rec := range c.data {
		if q != "" && !matchesAny(rec, columns, q) {
			continue
		}
		if c.filterColumn != "" && fv != "" && !strings.Contains(strings.ToLower(rec.Get(c.filterColumn)), fv) {
			continue
		}
		rows = append(rows, rec)
	}

	col, dir := c.sort.Column, c.sort.Direction
	sort.SliceStable(rows, func(i, j int) bool {
		a := strings.ToLower(rows[i].Get(col))
		b := strings.ToLower(rows[j].Get(col))
		if dir == Descending {
			return a > b
		}
		return a < b
	})

	return rows
}

func matchesAny(rec model.Record, columns []model.Field, q string) bool {
	for _, col := range columns {
		if strings.Contains(strings.ToLower(rec.Get(col)), q) {
			return true
		}
	}
	return false
}

// Page returns the rows of the current page. The stored page is clamped
// first, so a shrinking data set never leaves it out of range.
func (c *Controller) Page() PageView {
	rows := c.Rows()
	c.page = c.clamp(c.page, len(rows))

	pageRows := rows
	if c.pageSize != PageSizeAll {
		start := (c.page - 1) * c.pageSize
		end := start + c.pageSize
		if end > len(rows) {
			end = len(rows)
		}
		pageRows = rows[start:end]
	}

	return PageView{
		Rows:         pageRows,
		Page:         c.page,
		TotalPages:   c.totalPages(len(rows)),
		TotalRows:    len(rows),
		PageSize:     c.pageSize,
		Query:        c.query,
		FilterColumn: c.filterColumn,
		FilterValue:  c.filterValue,
		Sort:         c.sort,
		Columns:      c.layout.Columns(),
	}
}
