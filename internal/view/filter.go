package view

import (
	"sort"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

func isAll(key string) bool {
	return key == "" || key == AllKey
}

// FilterByMonth keeps records whose month key equals key. "all" keeps everything.
func FilterByMonth(records []model.Record, key string) []model.Record {
	if isAll(key) {
		return records
	}
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if k, ok := MonthKey(rec.StartDate); ok && k == key {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByFleet keeps records whose ac matches exactly. "all" keeps everything.
func FilterByFleet(records []model.Record, ac string) []model.Record {
	if isAll(ac) {
		return records
	}
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if rec.AC == ac {
			out = append(out, rec)
		}
	}
	return out
}

// Filter is the month and fleet selection of a viewer. Both apply to the same base set.
type Filter struct {
	Month string `json:"month"`
	Fleet string `json:"fleet"`
}

func (f Filter) Apply(records []model.Record) []model.Record {
	return FilterByFleet(FilterByMonth(records, f.Month), f.Fleet)
}

// Fleets lists distinct non-empty aircraft codes, sorted.
func Fleets(records []model.Record) []string {
	seen := make(map[string]struct{})
	fleets := make([]string, 0)
	for _, rec := range records {
		if rec.AC == "" {
			continue
		}
		if _, ok := seen[rec.AC]; ok {
			continue
		}
		seen[rec.AC] = struct{}{}
		fleets = append(fleets, rec.AC)
	}
	sort.Strings(fleets)
	return fleets
}
