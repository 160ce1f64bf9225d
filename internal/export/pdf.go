package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/eldos/workmarket/internal/codec"
	"github.com/eldos/workmarket/internal/schema"
)

// PDFGenerator renders a collection as one landscape table. Core fonts only,
// so cell text is passed through the cp1252 translator.
type PDFGenerator struct {
	codec *codec.Codec
}

func NewPDFGenerator(cdc *codec.Codec) *PDFGenerator {
	return &PDFGenerator{codec: cdc}
}

func (g *PDFGenerator) Generate(kind schema.Kind, records []map[string]any) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(kind.Name), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colWidth := (pageWidth - left - right) / float64(len(kind.Fields))

	pdf.SetFont("Helvetica", "B", 9)
	for _, f := range kind.Fields {
		pdf.CellFormat(colWidth, 7, tr(f.Name), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, record := range records {
		for _, f := range kind.Fields {
			value, err := g.codec.WireValue(f, record[f.Name])
			if err != nil {
				return nil, err
			}
			text := ""
			if value != nil {
				text = fmt.Sprint(value)
			}
			pdf.CellFormat(colWidth, 6, tr(text), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
