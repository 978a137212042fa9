package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin     = 20.0
	pdfLineHeight = 6.0
	pdfParagraph  = 3.0
	pdfBodySize   = 11.0
	pdfHeadSize   = 13.0
)

func renderPDF(title, text string) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, b := range Blocks(text) {
		if b.Heading {
			doc.SetFont("Helvetica", "B", pdfHeadSize)
		} else {
			doc.SetFont("Helvetica", "", pdfBodySize)
		}
		doc.MultiCell(0, pdfLineHeight, tr(b.Text), "", "L", false)
		doc.Ln(pdfParagraph)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
