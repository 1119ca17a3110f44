package view

import (
	"sort"
	"strconv"
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

// AllKey selects every record. It is never part of the derived tab list.
const AllKey = "all"

var monthNames = map[string]string{
	"01": "Jan", "02": "Fev", "03": "Mar", "04": "Abr",
	"05": "Mai", "06": "Jun", "07": "Jul", "08": "Ago",
	"09": "Set", "10": "Out", "11": "Nov", "12": "Dez",
}

type MonthTab struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	SortKey int    `json:"sort_key"`
}

type monthParts struct {
	mm, yyyy    string
	month, year int
}

func splitDate(startDate string) (monthParts, bool) {
	parts := strings.Split(startDate, "/")
	if len(parts) != 3 {
		return monthParts{}, false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return monthParts{}, false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return monthParts{}, false
	}
	return monthParts{mm: parts[1], yyyy: parts[2], month: month, year: year}, true
}

// MonthKey derives the MM/YYYY key of a DD/MM/YYYY date. Any other shape has no key.
func MonthKey(startDate string) (string, bool) {
	p, ok := splitDate(startDate)
	if !ok {
		return "", false
	}
	return p.mm + "/" + p.yyyy, true
}

// MonthTabs lists the distinct month keys in chronological order.
func MonthTabs(records []model.Record) []MonthTab {
	seen := make(map[string]struct{})
	tabs := make([]MonthTab, 0)

	for _, rec := range records {
		p, ok := splitDate(rec.StartDate)
		if !ok {
			continue
		}
		key := p.mm + "/" + p.yyyy
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		name, known := monthNames[p.mm]
		if !known {
			name = p.mm
		}
		tabs = append(tabs, MonthTab{
			Key:     key,
			Label:   name + "/" + p.yyyy,
			SortKey: p.year*100 + p.month,
		})
	}

	sort.SliceStable(tabs, func(i, j int) bool {
		return tabs[i].SortKey < tabs[j].SortKey
	})
	return tabs
}
