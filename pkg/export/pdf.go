package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const pdfUsableWidth = 277.0 // A4 landscape minus margins

func renderPDF(data Dataset) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 9, tr(data.Title), "", 1, "C", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Dibuat "+time.Now().Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	widths := columnWidths(data)
	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range data.Headers {
			pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}
	header()

	pdf.SetFont("Arial", "", 8)
	_, pageHeight := pdf.GetPageSize()
	for _, row := range data.Rows {
		if pdf.GetY()+6 > pageHeight-12 {
			pdf.AddPage()
			header()
			pdf.SetFont("Arial", "", 8)
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 6, tr(truncate(pdf, cell, widths[i])), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths splits the page proportionally to the longest cell per column.
func columnWidths(data Dataset) []float64 {
	lengths := make([]float64, len(data.Headers))
	var total float64
	for i, h := range data.Headers {
		lengths[i] = float64(len(h))
	}
	for _, row := range data.Rows {
		for i, cell := range row {
			if l := float64(len(cell)); l > lengths[i] {
				lengths[i] = l
			}
		}
	}
	for i := range lengths {
		if lengths[i] > 40 {
			lengths[i] = 40
		}
		if lengths[i] < 6 {
			lengths[i] = 6
		}
		total += lengths[i]
	}
	widths := make([]float64, len(lengths))
	for i, l := range lengths {
		widths[i] = pdfUsableWidth * l / total
	}
	return widths
}

func truncate(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width-2 {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width-2 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
