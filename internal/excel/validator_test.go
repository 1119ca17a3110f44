package excel

import (
	"context"
	"testing"

	"github.com/andreddluiz/Dash-AOS/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestInspect(t *testing.T) {
	records := []model.Record{
		{StartDate: "01/01/2024", AC: "PR-AAA", Base: "GRU", Range: "0 e 1h"},
		{StartDate: "", AC: "", Base: "GRU", Range: ""},
		{StartDate: "garbage", AC: "PR-BBB", Base: "CGH", Range: "6 e 12h"},
	}

	report := NewInspector().Inspect(context.Background(), records)

	assert.Equal(t, Report{Rows: 3, MissingDate: 2, UnknownRange: 1, MissingFleet: 1, DistinctBases: 2}, report)
}

func TestExcelStrategy(t *testing.T) {
	s := NewExcelStrategy()
	data := buildWorkbook(t, headerRow, []interface{}{"01/01/2024", "PR-AAA", nil, nil, "GRU"})

	records, err := s.Parse(context.Background(), data)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Inspect(context.Background(), records).Rows)
}
