package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const utf8FontFamily = "body"

// Coin is one numbered StarCoin on a printable sheet.
type Coin struct {
	Value  int
	Serial int
}

// PDFExporter renders tables and coin sheets. Without a UTF-8 font the core
// Arial font is used and text is translated to cp1252.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter. fontPath optionally points at a
// TrueType font with UTF-8 coverage.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

type pdfDoc struct {
	*gofpdf.Fpdf
	family string
	tr     func(string) string
}

func (e *PDFExporter) newDoc() *pdfDoc {
	fontDir, fontFile := "", ""
	if e.fontPath != "" {
		fontDir, fontFile = filepath.Split(e.fontPath)
	}
	pdf := gofpdf.New("P", "mm", "A4", fontDir)
	doc := &pdfDoc{Fpdf: pdf, family: "Arial", tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if fontFile != "" {
		pdf.AddUTF8Font(utf8FontFamily, "", fontFile)
		pdf.AddUTF8Font(utf8FontFamily, "B", fontFile)
		if pdf.Ok() {
			doc.family = utf8FontFamily
			doc.tr = func(s string) string { return s }
		} else {
			pdf.ClearError()
		}
	}
	return doc
}

func (d *pdfDoc) font(style string, size float64) {
	d.SetFont(d.family, style, size)
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	doc := e.newDoc()
	doc.SetMargins(10, 15, 10)
	doc.AddPage()

	if title != "" {
		doc.font("B", 14)
		doc.CellFormat(0, 10, doc.tr(title), "", 1, "C", false, 0, "")
		doc.Ln(5)
	}

	doc.font("B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		doc.CellFormat(colWidth, 8, doc.tr(header), "1", 0, "C", false, 0, "")
	}
	doc.Ln(-1)

	doc.font("", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			doc.CellFormat(colWidth, 7, doc.tr(row[header]), "1", 0, "", false, 0, "")
		}
		doc.Ln(-1)
	}

	return output(doc)
}

// Coin sheet geometry in millimetres.
const (
	coinDiameter = 32.0
	coinGap      = 6.0
	coinColumns  = 5
	coinMarginX  = 12.0
	coinMarginY  = 20.0
	pageHeight   = 297.0
)

// RenderCoinSheet lays coins out in a grid of numbered circles, adding pages
// as needed.
func (e *PDFExporter) RenderCoinSheet(coins []Coin, title string) ([]byte, error) {
	if len(coins) == 0 {
		return nil, fmt.Errorf("coin sheet requires at least one coin")
	}
	doc := e.newDoc()
	doc.SetMargins(coinMarginX, coinMarginY, coinMarginX)
	doc.SetAutoPageBreak(false, 0)

	step := coinDiameter + coinGap
	rowsPerPage := int((pageHeight - 2*coinMarginY) / step)
	perPage := rowsPerPage * coinColumns

	for i, coin := range coins {
		slot := i % perPage
		if slot == 0 {
			doc.AddPage()
			if title != "" {
				doc.font("B", 12)
				doc.SetXY(coinMarginX, 8)
				doc.CellFormat(0, 8, doc.tr(title), "", 0, "C", false, 0, "")
			}
		}
		col := slot % coinColumns
		row := slot / coinColumns
		cx := coinMarginX + coinDiameter/2 + float64(col)*step
		cy := coinMarginY + coinDiameter/2 + float64(row)*step

		doc.SetLineWidth(0.6)
		doc.SetFillColor(255, 215, 64)
		doc.Circle(cx, cy, coinDiameter/2, "DF")
		doc.SetLineWidth(0.2)
		doc.Circle(cx, cy, coinDiameter/2-2, "D")

		doc.font("B", 18)
		doc.SetXY(cx-coinDiameter/2, cy-7)
		doc.CellFormat(coinDiameter, 9, strconv.Itoa(coin.Value), "", 0, "C", false, 0, "")

		doc.font("", 7)
		doc.SetXY(cx-coinDiameter/2, cy+3)
		doc.CellFormat(coinDiameter, 4, fmt.Sprintf("SC-%d-%03d", coin.Value, coin.Serial), "", 0, "C", false, 0, "")
	}

	return output(doc)
}

func output(doc *pdfDoc) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := doc.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
