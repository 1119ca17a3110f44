package api

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/ai"
	"github.com/andreddluiz/Dash-AOS/internal/auth"
	"github.com/andreddluiz/Dash-AOS/internal/config"
	"github.com/andreddluiz/Dash-AOS/internal/dashboard"
	"github.com/andreddluiz/Dash-AOS/internal/export"
	"github.com/andreddluiz/Dash-AOS/internal/logger"
	"github.com/andreddluiz/Dash-AOS/internal/metrics"
	"github.com/andreddluiz/Dash-AOS/internal/model"
	"github.com/andreddluiz/Dash-AOS/internal/table"
	"github.com/andreddluiz/Dash-AOS/internal/view"
	"github.com/andreddluiz/Dash-AOS/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	ViewerHeader  = "X-Viewer-ID"
	defaultViewer = "default"
)

var exportTitles = map[dashboard.ExportScope]string{
	dashboard.ScopeView: "Visao Filtrada",
	dashboard.ScopeFull: "Dados Completos",
}

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

// Dependencies are the collaborators of the HTTP layer. Importer and
// Summarizer may be nil when Redis or the AI endpoint are not configured.
type Dependencies struct {
	Service    *dashboard.Service
	Viewers    *dashboard.Registry
	Importer   *dashboard.Importer
	Auth       auth.Authenticator
	Summarizer ai.Summarizer
	Metrics    *metrics.Registry
	Config     *config.Config

	// HealthChecks are reported by /health, keyed by service name.
	HealthChecks map[string]HealthCheck
}

type Handler struct {
	service    *dashboard.Service
	viewers    *dashboard.Registry
	importer   *dashboard.Importer
	auth       auth.Authenticator
	summarizer ai.Summarizer
	metrics    *metrics.Registry
	cfg        *config.Config
	checks     map[string]HealthCheck
	log        zerolog.Logger
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		service:    deps.Service,
		viewers:    deps.Viewers,
		importer:   deps.Importer,
		auth:       deps.Auth,
		summarizer: deps.Summarizer,
		metrics:    deps.Metrics,
		cfg:        deps.Config,
		checks:     deps.HealthChecks,
		log:        logger.Component("api"),
	}
}

func (h *Handler) viewer(c *gin.Context) *dashboard.Viewer {
	id := strings.TrimSpace(c.GetHeader(ViewerHeader))
	if id == "" {
		id = defaultViewer
	}
	return h.viewers.Get(id)
}

// respondError maps domain errors onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsValidationError(err):
		status = http.StatusBadRequest
	case errors.IsParseError(err):
		status = http.StatusUnprocessableEntity
	case stderrors.Is(err, errors.ErrRecordNotFound), stderrors.Is(err, errors.ErrImportNotFound):
		status = http.StatusNotFound
	case errors.IsStoreError(err):
		status = http.StatusBadGateway
	case stderrors.Is(err, errors.ErrAuthenticationFailed), stderrors.Is(err, errors.ErrSessionExpired):
		status = http.StatusUnauthorized
	case stderrors.Is(err, errors.ErrStaleResponse):
		status = http.StatusConflict
	}

	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// HealthCheck answers 503 when any backing service fails its probe.
func (h *Handler) HealthCheck(c *gin.Context) {
	code, health := http.StatusOK, "healthy"
	checks := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(c.Request.Context()); err != nil {
			h.log.Warn().Err(err).Str("check", name).Msg("Health check failed")
			checks[name] = err.Error()
			code, health = http.StatusServiceUnavailable, "degraded"
			continue
		}
		checks[name] = "ok"
	}

	status := h.service.Status()
	c.JSON(code, gin.H{
		"status":    health,
		"service":   h.cfg.App.Name,
		"version":   h.cfg.App.Version,
		"records":   status.Records,
		"loaded_at": status.LoadedAt,
		"checks":    checks,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	session, err := h.auth.Authenticate(c.Request.Context(), req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.LoginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt})
}

func (h *Handler) Logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
		return
	}

	if err := h.auth.Revoke(c.Request.Context(), token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) Session(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	ok, err := h.auth.Validate(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": ok})
}

// Overview applies the month, fleet and dimension query parameters, when
// present, and returns tabs, fleets, summary cards and chart.
func (h *Handler) Overview(c *gin.Context) {
	v := h.viewer(c)

	if dim, ok := c.GetQuery("dimension"); ok {
		d, err := view.ParseDimension(dim)
		if err != nil {
			h.respondError(c, errors.ValidationError{Field: "dimension", Value: dim, Message: err.Error()})
			return
		}
		v.SetDimension(d)
	}
	v.SetFilter(c.Query("month"), c.Query("fleet"))

	c.JSON(http.StatusOK, v.Overview(h.service.Records()))
}

func (h *Handler) SelectChart(c *gin.Context) {
	var req model.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	v := h.viewer(c)
	v.Select(req.Label)
	h.respondPage(c, v, nil)
}

func (h *Handler) ClearChartSelection(c *gin.Context) {
	v := h.viewer(c)
	v.ClearSelection()
	h.respondPage(c, v, nil)
}

func (h *Handler) respondPage(c *gin.Context, v *dashboard.Viewer, fn func(t *table.Controller) error) {
	var page table.PageView
	err := v.Do(h.service.Records(), func(t *table.Controller) error {
		if fn != nil {
			if err := fn(t); err != nil {
				return err
			}
		}
		page = t.Page()
		return nil
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// tableAction binds req from the body and runs apply against the caller's table.
func tableAction[T any](h *Handler, apply func(t *table.Controller, req T) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		h.respondPage(c, h.viewer(c), func(t *table.Controller) error {
			return apply(t, req)
		})
	}
}

func (h *Handler) GetTable(c *gin.Context) {
	h.respondPage(c, h.viewer(c), nil)
}

func (h *Handler) SearchTable() gin.HandlerFunc {
	return tableAction(h, func(t *table.Controller, req model.SearchRequest) error {
		t.Search(req.Query)
		return nil
	})
}

// FilterTable sets the column filter. An empty column clears it.
func (h *Handler) FilterTable() gin.HandlerFunc {
	return tableAction(h, func(t *table.Controller, req model.ColumnFilterRequest) error {
		return t.FilterColumn(req.Column, req.Value)
	})
}

func (h *Handler) SortTable() gin.HandlerFunc {
	return tableAction(h, func(t *table.Controller, req model.SortRequest) error {
		return t.ToggleSort(req.Column)
	})
}

func (h *Handler) SetPage() gin.HandlerFunc {
	return tableAction(h, func(t *table.Controller, req model.PageRequest) error {
		t.SetPage(req.Page)
		return nil
	})
}

func (h *Handler) SetPageSize() gin.HandlerFunc {
	return tableAction(h, func(t *table.Controller, req model.PageSizeRequest) error {
		return t.SetPageSize(req.PageSize)
	})
}

func (h *Handler) MoveColumn() gin.HandlerFunc {
	return tableAction(h, func(t *table.Controller, req model.MoveColumnRequest) error {
		if err := t.Layout().Move(req.From, req.To); err != nil {
			return errors.ValidationError{Field: "from/to", Value: fmt.Sprintf("%d->%d", req.From, req.To), Message: err.Error()}
		}
		return nil
	})
}

func (h *Handler) ResizeColumn() gin.HandlerFunc {
	return tableAction(h, func(t *table.Controller, req model.ResizeColumnRequest) error {
		col, ok := model.ParseField(req.Column)
		if !ok {
			return errors.ValidationError{Field: "column", Value: req.Column, Message: "unknown column"}
		}
		t.Layout().Resize(col, req.Width)
		return nil
	})
}

// Export renders the table rows (scope=view) or every record (scope=full)
// as a downloadable file.
func (h *Handler) Export(c *gin.Context) {
	scope := dashboard.ExportScope(c.DefaultQuery("scope", string(dashboard.ScopeView)))
	title, ok := exportTitles[scope]
	if !ok {
		h.respondError(c, errors.ValidationError{Field: "scope", Value: scope, Message: "must be view or full"})
		return
	}

	writer, err := export.ForFormat(c.Query("format"))
	if err != nil {
		h.respondError(c, errors.ValidationError{Field: "format", Value: c.Query("format"), Message: err.Error()})
		return
	}

	rows := h.viewer(c).ExportRows(h.service.Records(), scope)
	doc := export.NewDocument(title, rows)
	doc.FileName = fmt.Sprintf("%s.%s", export.Slug(title), writer.Extension())

	var buf bytes.Buffer
	if err := writer.Write(&buf, doc); err != nil {
		h.log.Error().Err(err).Str("file", doc.FileName).Msg("Failed to render export")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render export"})
		return
	}

	h.log.Info().Str("file", doc.FileName).Int("rows", len(rows)).Msg("Export rendered")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.FileName))
	c.Data(http.StatusOK, writer.ContentType(), buf.Bytes())
}

// Summary always answers 200; an unavailable model yields the placeholder.
func (h *Handler) Summary(c *gin.Context) {
	var req model.SummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	records := h.viewer(c).Filtered(h.service.Records())
	text, available := ai.SummaryWithFallback(c.Request.Context(), h.summarizer, req.Prompt, records, h.metrics, h.log)
	c.JSON(http.StatusOK, model.SummaryResponse{Summary: text, Available: available})
}

func (h *Handler) readUpload(c *gin.Context) (string, []byte, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return "", nil, false
	}
	if h.cfg.Server.MaxUploadSize > 0 && file.Size > h.cfg.Server.MaxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return "", nil, false
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return "", nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file"})
		return "", nil, false
	}
	return file.Filename, data, true
}

func (h *Handler) UploadRecords(c *gin.Context) {
	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	inserted, err := h.service.Upload(c.Request.Context(), name, data)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.log.Info().Str("file", name).Int("inserted", inserted).Msg("Spreadsheet uploaded")
	c.JSON(http.StatusOK, model.UploadResponse{Inserted: inserted, Total: h.service.Status().Records})
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Record deleted", "total": h.service.Status().Records})
}

func (h *Handler) ClearRecords(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All records deleted"})
}

func (h *Handler) RefreshRecords(c *gin.Context) {
	if err := h.service.Refresh(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Status())
}

func (h *Handler) ScheduleImport(c *gin.Context) {
	if h.importer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Async imports are disabled"})
		return
	}

	name, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	imp, err := h.importer.Schedule(c.Request.Context(), name, data)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, imp)
}

func (h *Handler) GetImport(c *gin.Context) {
	if h.importer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Async imports are disabled"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid import ID"})
		return
	}

	imp, err := h.importer.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imp)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
