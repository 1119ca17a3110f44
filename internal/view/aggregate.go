package view

import (
	"fmt"
	"sort"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

type Dimension string

const (
	DimensionBase       Dimension = "base"
	DimensionFleet      Dimension = "fleet"
	DimensionPartNumber Dimension = "partnumber"
	DimensionMTL        Dimension = "mtl"
	DimensionTime       Dimension = "time"
)

// NotAvailable labels records with an empty value on the aggregated column.
const NotAvailable = "N/A"

const DefaultPartNumberLimit = 50

func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimensionBase, DimensionFleet, DimensionPartNumber, DimensionMTL, DimensionTime:
		return d, nil
	case "":
		return DimensionBase, nil
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

func (d Dimension) field() model.Field {
	switch d {
	case DimensionFleet:
		return model.FieldAC
	case DimensionPartNumber:
		return model.FieldPartNumber
	case DimensionMTL:
		return model.FieldAnaliseMTL
	case DimensionTime:
		return model.FieldRange
	}
	return model.FieldBase
}

// Label returns the group a record falls into for this dimension.
func (d Dimension) Label(rec model.Record) string {
	if d == DimensionTime {
		return string(ClassifyRange(rec.Range))
	}
	if v := rec.Get(d.field()); v != "" {
		return v
	}
	return NotAvailable
}

// Aggregation is the chart input: ordered labels with their counts. Groups
// keeps every group, including labels not charted.
type Aggregation struct {
	Dimension Dimension                 `json:"dimension"`
	Labels    []string                  `json:"labels"`
	Counts    []int                     `json:"counts"`
	Groups    map[string][]model.Record `json:"-"`
}

func Aggregate(records []model.Record, dim Dimension) Aggregation {
	return AggregateWithLimit(records, dim, DefaultPartNumberLimit)
}

// AggregateWithLimit groups records by dimension. Labels are ordered by
// descending count with first-seen order on ties, except the time dimension
// which always charts the fixed buckets, zero counts included. Part numbers
// are capped at limit labels.
func AggregateWithLimit(records []model.Record, dim Dimension, limit int) Aggregation {
	groups := make(map[string][]model.Record)
	order := make([]string, 0)

	for _, rec := range records {
		label := dim.Label(rec)
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], rec)
	}

	var labels []string
	if dim == DimensionTime {
		labels = make([]string, len(TimeBuckets))
		for i, b := range TimeBuckets {
			labels[i] = string(b)
		}
	} else {
		labels = order
		sort.SliceStable(labels, func(i, j int) bool {
			return len(groups[labels[i]]) > len(groups[labels[j]])
		})
		if dim == DimensionPartNumber && limit > 0 && len(labels) > limit {
			labels = labels[:limit]
		}
	}

	counts := make([]int, len(labels))
	for i, label := range labels {
		counts[i] = len(groups[label])
	}

	return Aggregation{
		Dimension: dim,
		Labels:    labels,
		Counts:    counts,
		Groups:    groups,
	}
}

// Select returns the records behind a chart label.
func (a Aggregation) Select(label string) []model.Record {
	rows := a.Groups[label]
	if rows == nil {
		return []model.Record{}
	}
	out := make([]model.Record, len(rows))
	copy(out, rows)
	return out
}
