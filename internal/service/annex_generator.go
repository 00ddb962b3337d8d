package service

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// AnnexGenerator renders the generated pages of a quote annex.
type AnnexGenerator struct {
	title string
}

// NewAnnexGenerator creates a generator that prints title in every page header.
func NewAnnexGenerator(title string) *AnnexGenerator {
	return &AnnexGenerator{title: title}
}

type pdfColumn struct {
	header string
	width  float64
	align  string
}

var priceListColumns = []pdfColumn{
	{"Product", 70, "L"},
	{"Qty", 15, "R"},
	{"List price", 28, "R"},
	{"Unit price", 28, "R"},
	{"Disc. %", 17, "R"},
	{"Total", 32, "R"},
}

func (g *AnnexGenerator) newDocument(heading string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(g.title, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("cp1250")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(g.title), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, tr(heading), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	return pdf, tr
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64, currency string) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// PriceList renders one row per quote line with its prices and total.
// A quote without lines produces no document.
func (g *AnnexGenerator) PriceList(quote model.Quote, lines []model.Line) ([]byte, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	pdf, tr := g.newDocument("Price list - " + quote.Name)

	pdf.SetFont("Arial", "B", 10)
	for _, col := range priceListColumns {
		pdf.CellFormat(col.width, 7, col.header, "1", 0, col.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	var grand float64
	for _, line := range lines {
		total := LineTotal(line)
		grand += total
		name := line.Product.Name
		if line.ConfiguredProduct != "" {
			name = "  - " + name
		}
		values := []string{
			tr(name),
			strconv.FormatFloat(line.Quantity, 'f', -1, 64),
			money(line.ListPrice, ""),
			money(line.UnitPrice, ""),
			strconv.FormatFloat(line.Discount, 'f', -1, 64),
			money(total, ""),
		}
		for i, col := range priceListColumns {
			pdf.CellFormat(col.width, 6, values[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(158, 7, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 7, money(grand, quote.Currency), "1", 1, "R", false, 0, "")
	return output(pdf)
}

// QuoteSummary renders the quote header and the totals of its parent lines.
func (g *AnnexGenerator) QuoteSummary(quote model.Quote, lines []model.Line) ([]byte, error) {
	pdf, tr := g.newDocument("Quote summary")

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Quote", quote.Name},
		{"Customer", quote.AccountName},
	}
	if !quote.QuoteDate.IsZero() {
		rows = append(rows, [2]string{"Date", quote.QuoteDate.Format("02.01.2006")})
	}
	for _, row := range rows {
		pdf.CellFormat(40, 7, row[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Options are folded into their parent line's amount.
	totals := make(map[string]float64)
	var parents []model.Line
	for _, line := range lines {
		if line.ConfiguredProduct == "" {
			parents = append(parents, line)
			totals[line.ID] += LineTotal(line)
			continue
		}
		totals[line.ConfiguredProduct] += LineTotal(line)
	}

	var grand float64
	for _, p := range parents {
		grand += totals[p.ID]
		pdf.CellFormat(150, 7, tr(p.Product.Name), "B", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, money(totals[p.ID], quote.Currency), "B", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 9, "Grand total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, money(grand, quote.Currency), "", 1, "R", false, 0, "")
	return output(pdf)
}

// AgentPage renders the contact page of the quote's sales agent. A quote
// without an agent produces no document.
func (g *AnnexGenerator) AgentPage(quote model.Quote) ([]byte, error) {
	if quote.Agent == nil || quote.Agent.Name == "" {
		return nil, nil
	}

	pdf, tr := g.newDocument("Your sales agent")
	pdf.SetFont("Arial", "", 12)
	for _, v := range []string{quote.Agent.Name, quote.Agent.Email, quote.Agent.Phone} {
		if v == "" {
			continue
		}
		pdf.CellFormat(0, 8, tr(v), "", 1, "L", false, 0, "")
	}
	return output(pdf)
}

// Proforma renders a proforma invoice: the quote header, one row per line and
// the amount due. Option lines are listed under their parent. A quote
// without lines produces no document.
func (g *AnnexGenerator) Proforma(quote model.Quote, lines []model.Line, issued time.Time) ([]byte, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	pdf, tr := g.newDocument("Proforma invoice " + ProformaNumber(quote, issued))

	pdf.SetFont("Arial", "", 11)
	header := [][2]string{
		{"Customer", quote.AccountName},
		{"Quote", quote.Name},
		{"Issued", issued.Format("02.01.2006")},
	}
	if !quote.QuoteDate.IsZero() {
		header = append(header, [2]string{"Quote date", quote.QuoteDate.Format("02.01.2006")})
	}
	for _, row := range header {
		if row[1] == "" {
			continue
		}
		pdf.CellFormat(40, 7, row[0]+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	for _, col := range priceListColumns {
		pdf.CellFormat(col.width, 7, col.header, "1", 0, col.align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	var due float64
	for _, line := range orderedForInvoice(lines) {
		total := LineTotal(line)
		due += total
		name := line.Product.Name
		if line.ConfiguredProduct != "" {
			name = "  - " + name
		}
		values := []string{
			tr(name),
			strconv.FormatFloat(line.Quantity, 'f', -1, 64),
			money(line.ListPrice, ""),
			money(line.UnitPrice, ""),
			strconv.FormatFloat(line.Discount, 'f', -1, 64),
			money(total, ""),
		}
		for i, col := range priceListColumns {
			pdf.CellFormat(col.width, 6, values[i], "1", 0, col.align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(158, 8, "Amount due", "1", 0, "R", false, 0, "")
	pdf.CellFormat(32, 8, money(due, quote.Currency), "1", 1, "R", false, 0, "")
	return output(pdf)
}

// ProformaNumber identifies a proforma by quote and issue day.
func ProformaNumber(quote model.Quote, issued time.Time) string {
	return "PF-" + quote.ID + "-" + issued.Format("20060102")
}

// orderedForInvoice puts every option line right after its parent. Options
// whose parent is not on the quote go last.
func orderedForInvoice(lines []model.Line) []model.Line {
	children := make(map[string][]model.Line)
	parents := make(map[string]struct{})
	for _, l := range lines {
		if l.ConfiguredProduct == "" {
			parents[l.ID] = struct{}{}
			continue
		}
		children[l.ConfiguredProduct] = append(children[l.ConfiguredProduct], l)
	}

	out := make([]model.Line, 0, len(lines))
	for _, l := range lines {
		if l.ConfiguredProduct != "" {
			continue
		}
		out = append(out, l)
		out = append(out, children[l.ID]...)
	}
	for _, l := range lines {
		if _, ok := parents[l.ConfiguredProduct]; l.ConfiguredProduct != "" && !ok {
			out = append(out, l)
		}
	}
	return out
}
