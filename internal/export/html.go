package export

import (
	"html/template"
	"io"

	"github.com/andreddluiz/Dash-AOS/internal/view"
)

// HTMLWriter renders a standalone offline report: summary cards, the count
// per base and the full table.
type HTMLWriter struct {
	tmpl *template.Template
}

func NewHTMLWriter() *HTMLWriter {
	return &HTMLWriter{tmpl: template.Must(template.New("report").Parse(reportTemplate))}
}

func (h *HTMLWriter) ContentType() string { return "text/html; charset=utf-8" }

func (h *HTMLWriter) Extension() string { return "html" }

type reportRow struct {
	Label string
	Count int
}

func (h *HTMLWriter) Write(w io.Writer, doc Document) error {
	agg := view.Aggregate(doc.Records, view.DimensionBase)
	bases := make([]reportRow, len(agg.Labels))
	for i, label := range agg.Labels {
		bases[i] = reportRow{Label: label, Count: agg.Counts[i]}
	}

	rows := make([][]string, len(doc.Records))
	for i, rec := range doc.Records {
		rows[i] = doc.Row(rec)
	}

	return h.tmpl.Execute(w, map[string]interface{}{
		"Title":   doc.Title,
		"Summary": view.Summarize(doc.Records),
		"Bases":   bases,
		"Headers": doc.Headers(),
		"Rows":    rows,
	})
}

const reportTemplate = `<!doctype html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; background: #f8fafc; color: #0f172a; margin: 2rem; }
.cards { display: flex; gap: 1rem; margin-bottom: 1.5rem; }
.card { background: #fff; border: 1px solid #e2e8f0; border-radius: 12px; padding: 1rem 1.5rem; }
.card b { display: block; font-size: 2rem; }
table { border-collapse: collapse; background: #fff; font-size: 13px; }
th { background: #2276d0; color: #fff; text-align: left; }
th, td { padding: 6px 10px; border-bottom: 1px solid #f1f5f9; white-space: nowrap; }
tr:nth-child(even) td { background: #f5f5f5; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="cards">
<div class="card">Total de Registros<b>{{.Summary.Total}}</b></div>
<div class="card">Bases Atendidas<b>{{.Summary.Bases}}</b></div>
<div class="card">Mtl Utilizado<b>{{.Summary.MaterialUsed}}</b></div>
<div class="card">Part Numbers<b>{{.Summary.PartNumbers}}</b></div>
</div>
<h2>AOS por Base</h2>
<table>
<tr><th>BASE</th><th>AOS</th></tr>
{{range .Bases}}<tr><td>{{.Label}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
<h2>Analítico Completo</h2>
<table>
<tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr>
{{range .Rows}}<tr>{{range .}}<td>{{if .}}{{.}}{{else}}-{{end}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`
