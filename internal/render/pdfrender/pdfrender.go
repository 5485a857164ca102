// Package pdfrender lays a document tree out as an A4 PDF.
package pdfrender

import (
	"bytes"
	"fmt"
	"io"

	"github.com/diewo77/proposal-desk/internal/document"
	"github.com/diewo77/proposal-desk/internal/signature"
	"github.com/phpdave11/gofpdf"
)

const (
	margin     = 20.0
	lineHeight = 6.0
	rowHeight  = 7.0
	font       = "Helvetica"

	signatureMaxW = 60.0
	signatureMaxH = 22.0
)

type options struct {
	compress bool
}

type Option func(*options)

// WithoutCompression leaves content streams readable, which tests rely on.
func WithoutCompression() Option {
	return func(o *options) { o.compress = false }
}

type renderer struct {
	pdf   *gofpdf.Fpdf
	tr    func(string) string
	width float64
}

// Render writes doc as a PDF to w.
func Render(w io.Writer, doc document.Document, opts ...Option) error {
	o := options{compress: true}
	for _, opt := range opts {
		opt(&o)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCompression(o.compress)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("proposal-desk", true)

	pageW, _ := pdf.GetPageSize()
	r := &renderer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), width: pageW - 2*margin}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(0, 10, r.tr(doc.Footer), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.AddPage()

	r.title(doc.Title)
	for _, p := range doc.Intro {
		r.paragraph(p)
	}
	for _, s := range doc.Sections {
		r.section(s)
	}
	if len(doc.Signatures) > 0 {
		if err := r.signatures(doc.Signatures); err != nil {
			return err
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf layout: %w", err)
	}
	return pdf.Output(w)
}

func (r *renderer) title(s string) {
	r.pdf.SetFont(font, "B", 18)
	r.pdf.MultiCell(0, 9, r.tr(s), "", "C", false)
	r.pdf.Ln(4)
}

func (r *renderer) paragraph(p document.Paragraph) {
	for _, span := range p {
		style := ""
		if span.Bold {
			style = "B"
		}
		r.pdf.SetFont(font, style, 11)
		r.pdf.Write(lineHeight, r.tr(span.Text))
	}
	r.pdf.Ln(lineHeight + 2)
}

func (r *renderer) section(s document.Section) {
	r.pdf.Ln(2)
	r.pdf.SetFont(font, "B", 13)
	r.pdf.CellFormat(0, 8, r.tr(s.Heading()), "", 1, "L", false, 0, "")
	for _, p := range s.Body {
		r.paragraph(p)
	}
	for _, t := range s.Costs {
		r.costTable(t)
	}
	if len(s.Summary) > 0 {
		r.summary(s.Summary)
	}
	for _, g := range s.Values {
		r.valueTable(g)
	}
}

func (r *renderer) header(cols []float64, labels []string) {
	r.pdf.SetFont(font, "B", 10)
	r.pdf.SetFillColor(240, 240, 240)
	for i, label := range labels {
		r.pdf.CellFormat(r.width*cols[i], rowHeight, r.tr(label), "1", 0, "L", true, 0, "")
	}
	r.pdf.Ln(-1)
}

func (r *renderer) row(cols []float64, cells []string, aligns string) {
	for i, c := range cells {
		r.pdf.CellFormat(r.width*cols[i], rowHeight, r.tr(c), "1", 0, string(aligns[i]), false, 0, "")
	}
	r.pdf.Ln(-1)
}

var costCols = []float64{0.4, 0.2, 0.2, 0.2}

func (r *renderer) costTable(t document.CostTable) {
	r.pdf.SetFont(font, "B", 11)
	r.pdf.CellFormat(0, rowHeight, r.tr(t.Category), "", 1, "L", false, 0, "")
	r.header(costCols, []string{"Element", "Material Cost", "Labor Cost", "Total"})
	r.pdf.SetFont(font, "", 10)
	for _, row := range t.Rows {
		r.row(costCols, []string{row.Name, row.MaterialText(), row.LaborText(), row.TotalText()}, "LRRR")
	}
	r.pdf.SetFont(font, "B", 10)
	r.pdf.CellFormat(r.width*0.8, rowHeight, "Category Total", "1", 0, "L", false, 0, "")
	r.pdf.CellFormat(r.width*0.2, rowHeight, t.TotalText(), "1", 1, "R", false, 0, "")
	r.pdf.Ln(3)
}

var valueCols = []float64{0.6, 0.4}

func (r *renderer) valueTable(g document.ValueGroup) {
	r.pdf.SetFont(font, "B", 11)
	r.pdf.CellFormat(0, rowHeight, r.tr(g.Category), "", 1, "L", false, 0, "")
	r.header(valueCols, []string{"Variable", "Value"})
	r.pdf.SetFont(font, "", 10)
	for _, row := range g.Rows {
		r.row(valueCols, []string{row.Name, row.ValueText()}, "LR")
	}
	r.pdf.Ln(3)
}

func (r *renderer) summary(rows []document.SummaryRow) {
	for _, row := range rows {
		style := ""
		if row.Strong {
			style = "B"
		}
		r.pdf.SetFont(font, style, 11)
		r.pdf.CellFormat(r.width*0.7, rowHeight, r.tr(row.Label), "1", 0, "L", false, 0, "")
		r.pdf.CellFormat(r.width*0.3, rowHeight, row.AmountText(), "1", 1, "R", false, 0, "")
	}
	r.pdf.Ln(3)
}

// signatures draws the blocks side by side on one band, starting a new page
// when the band would not fit.
func (r *renderer) signatures(blocks []document.SignatureBlock) error {
	const bandHeight = 70.0
	_, pageH := r.pdf.GetPageSize()
	r.pdf.Ln(8)
	if r.pdf.GetY()+bandHeight > pageH-margin {
		r.pdf.AddPage()
	}
	top := r.pdf.GetY()
	colW := r.width / float64(len(blocks))
	for i, b := range blocks {
		x := margin + float64(i)*colW
		if err := r.signature(i, b, x, top, colW-8); err != nil {
			return err
		}
	}
	r.pdf.SetY(top + bandHeight)
	return nil
}

func (r *renderer) signature(i int, b document.SignatureBlock, x, y, w float64) error {
	pdf := r.pdf
	pdf.SetXY(x, y)
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(w, lineHeight, r.tr(b.Label), "", 2, "L", false, 0, "")

	imgTop := pdf.GetY() + 2
	drawn := false
	if b.HasImage() {
		ok, err := r.image(fmt.Sprintf("signature-%d", i), b.Image, x, imgTop)
		if err != nil {
			return err
		}
		drawn = ok
	}
	if !drawn {
		pdf.Line(x, imgTop+signatureMaxH-2, x+signatureMaxW, imgTop+signatureMaxH-2)
	}

	pdf.SetXY(x, imgTop+signatureMaxH+2)
	pdf.SetFont(font, "", 10)
	for _, line := range []string{b.Name, b.Affiliation, "Initials: " + b.Initials, "Date: " + b.Date} {
		pdf.CellFormat(w, 5.5, r.tr(line), "", 2, "L", false, 0, "")
	}
	return nil
}

// image embeds a data URI scaled into the signature box. A payload that is
// not a readable image falls back to a blank line.
func (r *renderer) image(name, uri string, x, y float64) (bool, error) {
	img, err := signature.ParseDataURI(uri)
	if err != nil {
		return false, nil
	}
	data, kind, err := signature.Normalize(img.Data)
	if err != nil {
		return false, nil
	}
	pw, ph, err := signature.Size(data)
	if err != nil || pw == 0 || ph == 0 {
		return false, nil
	}
	w, h := fit(float64(pw), float64(ph), signatureMaxW, signatureMaxH)
	opt := gofpdf.ImageOptions{ImageType: kind}
	r.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(data))
	if err := r.pdf.Error(); err != nil {
		return false, fmt.Errorf("embed %s: %w", name, err)
	}
	r.pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
	return true, nil
}

// fit scales a box of w x h into maxW x maxH keeping its aspect ratio.
func fit(w, h, maxW, maxH float64) (float64, float64) {
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}
