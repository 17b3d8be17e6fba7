package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	margin     = 15.0
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func renderPDF(w io.Writer, doc *document) error {
	inv := doc.invoice

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetTitle("Invoice "+inv.Number, true)
	pdf.AddPage()

	// Core fonts are cp1252; translate so accented client names survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*margin

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW/2, 10, "INVOICE", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW/2, 10, tr(inv.Number), "", 1, "R", false, 0, "")

	pdf.CellFormat(contentW, 5, "Status: "+string(inv.Status), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Issued: "+inv.IssuedDate.Format(dateLayout), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, "Due: "+inv.DueDate.Format(dateLayout), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Bill to", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	for _, line := range clientLines(doc) {
		pdf.CellFormat(contentW, 5, tr(line), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)

	colDesc := contentW * 0.52
	colQty := contentW * 0.12
	colPrice := contentW * 0.18
	colAmount := contentW * 0.18

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colDesc, 7, "Description", "B", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, 7, "Qty", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colPrice, 7, "Unit price", "B", 0, "R", true, 0, "")
	pdf.CellFormat(colAmount, 7, "Amount", "B", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)

	for _, item := range inv.Items {
		pdf.CellFormat(colDesc, 6, tr(item.Description), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 6, item.Quantity.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, 6, money(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 6, money(item.Amount), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(margin, pdf.GetY(), pageW-margin, pdf.GetY())
	pdf.Ln(2)

	labelW := colDesc + colQty + colPrice

	total := func(label string, value decimal.Decimal, bold bool) {
		style := ""
		if bold {
			style = "B"
		}

		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(labelW, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, 6, money(value), "", 1, "R", false, 0, "")
	}

	total("Subtotal", inv.Subtotal, false)
	total("Tax", inv.Tax, false)

	if !inv.Discount.IsZero() {
		total("Discount", inv.Discount.Neg(), false)
	}

	total("Total", inv.Total, true)
	total("Paid", inv.AmountPaid, false)
	total("Balance due", inv.BalanceDue(), true)

	if len(doc.payments) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(contentW, 6, "Payments", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)

		for _, p := range doc.payments {
			ref := ""
			if p.Reference != nil {
				ref = *p.Reference
			}

			pdf.CellFormat(contentW*0.2, 5, p.Date.Format(dateLayout), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.2, 5, string(p.Method), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.42, 5, tr(ref), "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.18, 5, money(p.Amount), "", 1, "R", false, 0, "")
		}
	}

	if inv.Notes != nil && *inv.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.MultiCell(contentW, 5, tr(*inv.Notes), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("rendering invoice %s: %w", inv.Number, err)
	}

	return nil
}

func clientLines(doc *document) []string {
	c := doc.client
	lines := []string{c.Name}

	for _, v := range []*string{c.Company, c.Address, &c.Email, c.Phone} {
		if v != nil && *v != "" {
			lines = append(lines, *v)
		}
	}

	return lines
}
