package view

import (
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

type Summary struct {
	Total        int `json:"total"`
	Bases        int `json:"bases"`
	MaterialUsed int `json:"material_used"`
	PartNumbers  int `json:"part_numbers"`
}

func Summarize(records []model.Record) Summary {
	bases := make(map[string]struct{})
	parts := make(map[string]struct{})
	s := Summary{Total: len(records)}

	for _, rec := range records {
		if rec.Base != "" {
			bases[rec.Base] = struct{}{}
		}
		if rec.PartNumber != "" {
			parts[rec.PartNumber] = struct{}{}
		}
		if strings.ToUpper(rec.MTLUtilizado) == "SIM" {
			s.MaterialUsed++
		}
	}

	s.Bases = len(bases)
	s.PartNumbers = len(parts)
	return s
}
