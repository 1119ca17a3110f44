package dashboard

import (
	"sync"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/internal/table"
	"github.com/andreddluiz/Dash-AOS/internal/view"

	"github.com/patrickmn/go-cache"
)

// ExportScope selects which rows an export contains.
type ExportScope string

const (
	ScopeView ExportScope = "view"
	ScopeFull ExportScope = "full"
)

// Viewer is the view state of one dashboard user: month and fleet filters,
// chart dimension, an optional chart-click selection and the table.
type Viewer struct {
	mu sync.Mutex

	filter          view.Filter
	dimension       view.Dimension
	selection       string
	partNumberLimit int
	table           *table.Controller
}

type ViewerOptions struct {
	PageSize        int
	ColumnWidth     int
	MinColumnWidth  int
	PartNumberLimit int
}

func NewViewer(opts ViewerOptions) *Viewer {
	if opts.PartNumberLimit == 0 {
		opts.PartNumberLimit = view.DefaultPartNumberLimit
	}
	return &Viewer{
		filter:          view.Filter{Month: view.AllKey, Fleet: view.AllKey},
		dimension:       view.DimensionBase,
		partNumberLimit: opts.PartNumberLimit,
		table:           table.NewController(opts.PageSize, table.NewLayout(opts.ColumnWidth, opts.MinColumnWidth)),
	}
}

// Do runs fn with exclusive access to the viewer after syncing the table
// with records.
func (v *Viewer) Do(records []model.Record, fn func(t *table.Controller) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sync(records)
	return fn(v.table)
}

// SetFilter changes month and fleet. Any chart selection is dropped since it
// belonged to the previous subset. Empty values keep the current choice.
func (v *Viewer) SetFilter(month, fleet string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	next := v.filter
	if month != "" {
		next.Month = month
	}
	if fleet != "" {
		next.Fleet = fleet
	}
	if next != v.filter {
		v.selection = ""
	}
	v.filter = next
}

func (v *Viewer) SetDimension(d view.Dimension) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if d != v.dimension {
		v.selection = ""
	}
	v.dimension = d
}

// Select narrows the table to the records behind a chart label.
func (v *Viewer) Select(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selection = label
}

func (v *Viewer) ClearSelection() {
	v.Select("")
}

func (v *Viewer) sync(records []model.Record) (filtered []model.Record, agg view.Aggregation) {
	filtered = v.filter.Apply(records)
	agg = view.AggregateWithLimit(filtered, v.dimension, v.partNumberLimit)

	if v.selection != "" {
		v.table.SetData(agg.Select(v.selection))
	} else {
		v.table.SetData(filtered)
	}
	return filtered, agg
}

// Overview is everything the dashboard header, cards and chart render.
type Overview struct {
	Tabs      []view.MonthTab  `json:"tabs"`
	Fleets    []string         `json:"fleets"`
	Filter    view.Filter      `json:"filter"`
	Summary   view.Summary     `json:"summary"`
	Chart     view.Aggregation `json:"chart"`
	Selection string           `json:"selection,omitempty"`
}

// Overview derives tabs and fleets from the full set and the summary and
// chart from the filtered set.
func (v *Viewer) Overview(records []model.Record) Overview {
	v.mu.Lock()
	defer v.mu.Unlock()

	filtered, agg := v.sync(records)
	return Overview{
		Tabs:      view.MonthTabs(records),
		Fleets:    view.Fleets(records),
		Filter:    v.filter,
		Summary:   view.Summarize(filtered),
		Chart:     agg,
		Selection: v.selection,
	}
}

// Filtered returns the month/fleet subset the AI summary works on.
func (v *Viewer) Filtered(records []model.Record) []model.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter.Apply(records)
}

// ExportRows returns the searched, filtered and sorted table rows for
// ScopeView, or the whole set for ScopeFull.
func (v *Viewer) ExportRows(records []model.Record, scope ExportScope) []model.Record {
	if scope == ScopeFull {
		return records
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.sync(records)
	return v.table.Rows()
}

// Registry keeps one Viewer per viewer id and expires idle ones.
type Registry struct {
	cache   *cache.Cache
	opts    ViewerOptions
	metrics *metrics.Registry
	mu      sync.Mutex
}

func NewRegistry(opts ViewerOptions, ttl, cleanup time.Duration, m *metrics.Registry) *Registry {
	return &Registry{
		cache:   cache.New(ttl, cleanup),
		opts:    opts,
		metrics: m,
	}
}

// Get returns the viewer for id, creating it on first use. Each access
// extends its lifetime.
func (r *Registry) Get(id string) *Viewer {
	r.mu.Lock()
	defer r.mu.Unlock()

	var v *Viewer
	if cached, ok := r.cache.Get(id); ok {
		v = cached.(*Viewer)
	} else {
		v = NewViewer(r.opts)
	}
	r.cache.SetDefault(id, v)
	r.metrics.ActiveViewers.Set(float64(r.cache.ItemCount()))
	return v
}

func (r *Registry) Forget(id string) {
	r.cache.Delete(id)
	r.metrics.ActiveViewers.Set(float64(r.cache.ItemCount()))
}
