package ai

import (
	"context"

	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/model"

	"github.com/rs/zerolog"
)

// SummaryWithFallback never fails: any error from s becomes FallbackText
// and available is false. A nil summarizer is treated as unavailable.
func SummaryWithFallback(ctx context.Context, s Summarizer, prompt string, records []model.Record, m *metrics.Registry, log zerolog.Logger) (text string, available bool) {
	if s == nil {
		m.AIRequestsTotal.WithLabelValues("disabled").Inc()
		return FallbackText, false
	}

	text, err := s.Summarize(ctx, prompt, records)
	if err != nil || text == "" {
		m.AIRequestsTotal.WithLabelValues("failed").Inc()
		log.Warn().Err(err).Msg("AI summary unavailable, using fallback")
		return FallbackText, false
	}

	m.AIRequestsTotal.WithLabelValues("ok").Inc()
	return text, true
}
