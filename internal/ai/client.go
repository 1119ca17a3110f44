package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/internal/view"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// FallbackText replaces the answer whenever the AI request fails.
const FallbackText = "Não foi possível gerar a análise no momento. Tente novamente mais tarde."

const DefaultMaxContextRecords = 200

// Summarizer answers a free-form prompt about a record subset.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string, records []model.Record) (string, error)
}

type Config struct {
	BaseURL           string
	Model             string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int
	MaxContextRecords int
}

// Client calls a generateContent style text endpoint.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cfg        Config
	log        zerolog.Logger
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxContextRecords <= 0 {
		cfg.MaxContextRecords = DefaultMaxContextRecords
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		cfg:        cfg,
		log:        logger.Component("ai"),
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Summarize sends the prompt together with summary statistics and at most
// MaxContextRecords records. A request over the rate limit fails at once
// instead of waiting.
func (c *Client) Summarize(ctx context.Context, prompt string, records []model.Record) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("%w: no api key configured", errors.ErrAIUnavailable)
	}
	if !c.limiter.Allow() {
		return "", fmt.Errorf("%w: rate limited", errors.ErrAIUnavailable)
	}

	text, err := BuildPrompt(prompt, records, c.cfg.MaxContextRecords)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: text}}}},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrAIUnavailable, err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: status %d: invalid response", errors.ErrAIUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", errors.ErrAIUnavailable, resp.StatusCode, msg)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", errors.ErrAIUnavailable)
	}

	c.log.Info().
		Int("records", len(records)).
		Int("prompt_bytes", len(text)).
		Dur("duration", time.Since(start)).
		Msg("AI summary generated")
	return out.Candidates[0].Content.Parts[0].Text, nil
}

// BuildPrompt embeds summary statistics and the first limit records of the
// subset as JSON after the user prompt.
func BuildPrompt(prompt string, records []model.Record, limit int) (string, error) {
	sample := records
	if limit > 0 && len(sample) > limit {
		sample = sample[:limit]
	}

	stats, err := json.Marshal(view.Summarize(records))
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(sample)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Você é um analista de logística aeronáutica. Responda em português.\n\n")
	b.WriteString("Pergunta: ")
	b.WriteString(strings.TrimSpace(prompt))
	b.WriteString("\n\nEstatísticas: ")
	b.Write(stats)
	fmt.Fprintf(&b, "\n\nRegistros (%d de %d): ", len(sample), len(records))
	b.Write(data)
	return b.String(), nil
}
