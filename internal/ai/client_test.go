package ai

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(n int) []model.Record {
	out := make([]model.Record, n)
	for i := range out {
		out[i] = model.Record{AC: fmt.Sprintf("PR-%03d", i), Base: "GRU", MTLUtilizado: "SIM"}
	}
	return out
}

func TestSummarize(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"GRU concentra os eventos."}]}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "test-model", APIKey: "secret"})

	text, err := c.Summarize(context.Background(), "Qual base mais crítica?", sampleRecords(3))

	require.NoError(t, err)
	assert.Equal(t, "GRU concentra os eventos.", text)
	require.Len(t, got.Contents, 1)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "Qual base mais crítica?")
	assert.Contains(t, got.Contents[0].Parts[0].Text, "PR-002")
}

func TestSummarizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "m", APIKey: "k"})

	_, err := c.Summarize(context.Background(), "p", nil)

	assert.ErrorIs(t, err, errors.ErrAIUnavailable)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSummarizeEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "m", APIKey: "k"})

	_, err := c.Summarize(context.Background(), "p", nil)

	assert.ErrorIs(t, err, errors.ErrAIUnavailable)
}

func TestSummarizeWithoutKey(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1", Model: "m"})

	_, err := c.Summarize(context.Background(), "p", nil)

	assert.ErrorIs(t, err, errors.ErrAIUnavailable)
}

func TestSummarizeRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "m", APIKey: "k", RequestsPerMinute: 1})

	_, err := c.Summarize(context.Background(), "p", nil)
	require.NoError(t, err)
	_, err = c.Summarize(context.Background(), "p", nil)
	assert.ErrorIs(t, err, errors.ErrAIUnavailable)
}

func TestSummarizeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Model: "m", APIKey: "k", Timeout: 20 * time.Millisecond})

	_, err := c.Summarize(context.Background(), "p", nil)

	assert.ErrorIs(t, err, errors.ErrAIUnavailable)
}

func TestBuildPromptCapsRecords(t *testing.T) {
	text, err := BuildPrompt("resumo", sampleRecords(250), 200)
	require.NoError(t, err)

	assert.Contains(t, text, "Registros (200 de 250)")
	assert.Contains(t, text, "PR-199")
	assert.NotContains(t, text, "PR-200")
	assert.Contains(t, text, `"total":250`)
}

type summarizerFunc func(ctx context.Context, prompt string, records []model.Record) (string, error)

func (f summarizerFunc) Summarize(ctx context.Context, prompt string, records []model.Record) (string, error) {
	return f(ctx, prompt, records)
}

func TestSummaryWithFallback(t *testing.T) {
	m := metrics.NewNop()
	log := logger.Get()

	text, ok := SummaryWithFallback(context.Background(), summarizerFunc(func(ctx context.Context, prompt string, records []model.Record) (string, error) {
		return "análise", nil
	}), "p", nil, m, log)
	assert.True(t, ok)
	assert.Equal(t, "análise", text)

	text, ok = SummaryWithFallback(context.Background(), summarizerFunc(func(ctx context.Context, prompt string, records []model.Record) (string, error) {
		return "", stderrors.New("network down")
	}), "p", nil, m, log)
	assert.False(t, ok)
	assert.Equal(t, FallbackText, text)

	text, ok = SummaryWithFallback(context.Background(), nil, "p", nil, m, log)
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(text, "Não foi possível"))
}
