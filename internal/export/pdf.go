package export

import (
	"io"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin   = 40.0
	pdfFontSize = 8.0
	pdfRowH     = 14.0
	pdfPadding  = 3.0
)

// Header fill and stripe colors of the rendered table.
var (
	headerFill = [3]int{34, 118, 208}
	stripeFill = [3]int{245, 245, 245}
)

type PDFWriter struct{}

func NewPDFWriter() *PDFWriter {
	return &PDFWriter{}
}

func (p *PDFWriter) ContentType() string { return "application/pdf" }

func (p *PDFWriter) Extension() string { return "pdf" }

// Write renders a landscape A4 table with a title, a blue header repeated
// on every page and striped rows. Cell text is cut to the column width.
func (p *PDFWriter) Write(w io.Writer, doc Document) error {
	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()
	colW := (pageW - 2*pdfMargin) / float64(len(doc.Columns))
	headers := doc.Headers()

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", pdfFontSize)
		pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		pdf.SetTextColor(255, 255, 255)
		for _, h := range headers {
			pdf.CellFormat(colW, pdfRowH+4, fit(pdf, tr(h), colW), "", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(pdfMargin, 20)
	pdf.CellFormat(0, 20, tr(doc.Title), "", 1, "L", false, 0, "")
	pdf.SetY(50)
	drawHeader()

	for i, rec := range doc.Records {
		if pdf.GetY()+pdfRowH > pageH-pdfMargin {
			pdf.AddPage()
			drawHeader()
		}
		fill := i%2 == 1
		if fill {
			pdf.SetFillColor(stripeFill[0], stripeFill[1], stripeFill[2])
		}
		for _, v := range doc.Row(rec) {
			pdf.CellFormat(colW, pdfRowH, fit(pdf, tr(v), colW), "", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// fit shortens s until it fits in width minus padding.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	room := width - 2*pdfPadding
	if pdf.GetStringWidth(s) <= room {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"..") > room {
		s = s[:len(s)-1]
	}
	return s + ".."
}
