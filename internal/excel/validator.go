package excel

import (
	"context"

	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/internal/view"
)

// Report describes ingested records without rejecting any of them.
// Malformed fields degrade to defaults downstream.
type Report struct {
	Rows          int `json:"rows"`
	MissingDate   int `json:"missing_date"`
	UnknownRange  int `json:"unknown_range"`
	MissingFleet  int `json:"missing_fleet"`
	DistinctBases int `json:"distinct_bases"`
}

type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

func (i *Inspector) Inspect(ctx context.Context, records []model.Record) Report {
	report := Report{Rows: len(records)}
	bases := make(map[string]struct{})

	for _, rec := range records {
		if _, ok := view.MonthKey(rec.StartDate); !ok {
			report.MissingDate++
		}
		if view.ClassifyRange(rec.Range) == view.BucketNoInfo {
			report.UnknownRange++
		}
		if rec.AC == "" {
			report.MissingFleet++
		}
		if rec.Base != "" {
			bases[rec.Base] = struct{}{}
		}
	}
	report.DistinctBases = len(bases)

	return report
}
