package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/andreddluiz/Dash-AOS/internal/model"
)

// Document is what every writer renders: a title, the columns in canonical
// order and the rows.
type Document struct {
	Title    string
	FileName string
	Columns  []model.Field
	Records  []model.Record
}

func NewDocument(title string, records []model.Record) Document {
	return Document{
		Title:   title,
		Columns: model.Fields,
		Records: records,
	}
}

// Headers returns the display names of the document columns.
func (d Document) Headers() []string {
	headers := make([]string, len(d.Columns))
	for i, f := range d.Columns {
		headers[i] = model.DisplayName(f)
	}
	return headers
}

// Row returns one record's values in column order.
func (d Document) Row(rec model.Record) []string {
	values := make([]string, len(d.Columns))
	for i, f := range d.Columns {
		values[i] = rec.Get(f)
	}
	return values
}

type Writer interface {
	Write(w io.Writer, doc Document) error
	ContentType() string
	Extension() string
}

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

func ForFormat(format string) (Writer, error) {
	switch Format(strings.ToLower(format)) {
	case FormatXLSX, "":
		return NewXLSXWriter(), nil
	case FormatPDF:
		return NewPDFWriter(), nil
	case FormatCSV:
		return NewCSVWriter(), nil
	case FormatHTML:
		return NewHTMLWriter(), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug lower-cases a title and joins its words with underscores.
func Slug(title string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "_")
}
