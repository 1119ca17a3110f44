package export

import (
	"bufio"
	"io"
	"strings"
)

type CSVWriter struct{}

func NewCSVWriter() *CSVWriter {
	return &CSVWriter{}
}

func (c *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (c *CSVWriter) Extension() string { return "csv" }

// Write emits the header line unquoted and every value quoted, doubling
// embedded quotes.
func (c *CSVWriter) Write(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(doc.Headers(), ",")); err != nil {
		return err
	}

	for _, rec := range doc.Records {
		values := doc.Row(rec)
		for i, v := range values {
			values[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		}
		if _, err := bw.WriteString("\n" + strings.Join(values, ",")); err != nil {
			return err
		}
	}

	return bw.Flush()
}
