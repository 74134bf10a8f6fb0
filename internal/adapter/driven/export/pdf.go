package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer writes a printable rendition of the report card.
type PDFRenderer struct {
	footer string
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer(footer string) *PDFRenderer {
	return &PDFRenderer{footer: footer}
}

func (r *PDFRenderer) Format() string   { return FormatPDF }
func (r *PDFRenderer) Filename() string { return "report.pdf" }

// pdfState replaces the status glyphs, which the core PDF fonts cannot draw.
func pdfState(s entity.State) string {
	switch s {
	case entity.StateOptimized:
		return "OK"
	case entity.StateOpportunity:
		return "SAVE"
	default:
		return "ERROR"
	}
}

// Render implements repository.ReportRenderer.
func (r *PDFRenderer) Render(m *entity.ReportModel) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(m.GeneratedAt)
	pdf.SetTitle("AWS Cost Optimization Report "+m.RunID, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{35, 47, 62}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Run %s | generated %s", m.RunID, m.GeneratedAt.Format("2006-01-02 15:04 MST"))
		if r.footer != "" {
			footerText += " | " + r.footer
		}
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	sectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)
		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+190, pdf.GetY())
		pdf.Ln(3)
		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	}

	row := func(widths []float64, cells []string, style string, border string) {
		pdf.SetFont("Arial", style, 9)
		for i, c := range cells {
			align := "L"
			if i > 0 && strings.HasPrefix(c, "$") {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(fit(pdf, c, widths[i])), border, 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 14, tr("  AWS Cost Optimization Report Card"), "", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	meta := fmt.Sprintf("  Generated %s  |  Run %s", m.GeneratedAt.Format("2006-01-02 15:04:05 MST"), m.RunID)
	if m.AccountID != "" {
		meta += "  |  Account " + m.AccountID
	}
	pdf.CellFormat(0, 8, tr(meta), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	sectionTitle("Executive Summary")
	summary := [][2]string{
		{"Analyses run", fmt.Sprintf("%d (%d optimized, %d with opportunities, %d failed)", m.Counts.Total, m.Counts.Optimized, m.Counts.Opportunities, m.Counts.Errors)},
		{"Current monthly spend", money.Format(m.Totals.CurrentMonthlyCost)},
		{"Current yearly spend", money.Format(m.Totals.CurrentYearlyCost)},
		{"Total monthly savings", money.Format(m.Totals.TotalMonthlySavings)},
		{"Total yearly savings", money.Format(m.Totals.TotalYearlySavings)},
		{"Potential cost reduction", money.Percent(m.Totals.SavingsPercentage)},
	}
	for _, kv := range summary {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(60, 6, tr(kv[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	sectionTitle("Savings Breakdown by Category")
	catWidths := []float64{35, 35, 35, 85}
	row(catWidths, []string{"Category", "Monthly", "Yearly", "Analyzers"}, "B", "B")
	for _, c := range m.Categories {
		row(catWidths, []string{string(c.Category), money.Format(c.Monthly), money.Format(c.Yearly), strings.Join(c.Analyzers, ", ")}, "", "")
	}
	pdf.Ln(6)

	sectionTitle("Top Recommendations")
	if len(m.TopRecommendations) == 0 {
		pdf.MultiCell(190, 5, tr("Great job! All analyzed resources are already optimized."), "", "L", false)
	}
	for _, rec := range m.TopRecommendations {
		pdf.SetFont("Arial", "B", 9)
		pdf.MultiCell(190, 5, tr(fmt.Sprintf("%d. [%s] %s", rec.Rank, rec.AnalyzerName, stripANSI(rec.Description))), "", "L", false)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(190, 5, tr(fmt.Sprintf("    %s/month   %s/year", money.Format(rec.MonthlySavings), money.Format(rec.YearlySavings))), "", "L", false)
	}
	pdf.Ln(6)

	sectionTitle("Reconciliation")
	resWidths := []float64{16, 54, 24, 32, 32, 32}
	row(resWidths, []string{"Status", "Analyzer", "Category", "Current/mo", "Monthly", "Yearly"}, "B", "B")
	for _, res := range m.Results {
		row(resWidths, []string{pdfState(res.State), res.Name, string(res.Category),
			money.Format(res.CurrentMonthlyCost), money.Format(res.MonthlySavings), money.Format(res.YearlySavings)}, "", "")
	}
	row(resWidths, []string{"", "TOTAL", "", money.Format(m.Totals.CurrentMonthlyCost),
		money.Format(m.Totals.TotalMonthlySavings), money.Format(m.Totals.TotalYearlySavings)}, "B", "T")

	if failed := m.FailedResults(); len(failed) > 0 {
		pdf.Ln(6)
		sectionTitle("Failed Analyses")
		for _, res := range failed {
			pdf.MultiCell(190, 5, tr(fmt.Sprintf("%s: %s (raw report: %s)", res.Name, res.Reason, res.RawReportPath)), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error writing PDF report: %w", err)
	}
	return buf.Bytes(), nil
}

// fit truncates s so it fits a cell of width w at the current font.
func fit(pdf *gofpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w-2 {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > w-2 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
