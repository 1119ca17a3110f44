package excel

import (
	"context"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

type IngestionStrategy interface {
	Parse(ctx context.Context, data []byte) ([]model.Record, error)
	Inspect(ctx context.Context, records []model.Record) Report
}

type ExcelStrategy struct {
	parser    *Parser
	inspector *Inspector
}

func NewExcelStrategy() IngestionStrategy {
	return &ExcelStrategy{
		parser:    NewParser(),
		inspector: NewInspector(),
	}
}

func (s *ExcelStrategy) Parse(ctx context.Context, data []byte) ([]model.Record, error) {
	return s.parser.Parse(ctx, data)
}

func (s *ExcelStrategy) Inspect(ctx context.Context, records []model.Record) Report {
	return s.inspector.Inspect(ctx, records)
}
