package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/mattn/go-runewidth"
)

const (
	textWidth   = 88
	nameWidth   = 26
	catWidth    = 10
	amountWidth = 14
)

// TextRenderer writes the fixed-width summary report card.
type TextRenderer struct {
	footer string
}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer(footer string) *TextRenderer {
	return &TextRenderer{footer: footer}
}

func (r *TextRenderer) Format() string   { return FormatText }
func (r *TextRenderer) Filename() string { return "summary.txt" }

// Render implements repository.ReportRenderer.
func (r *TextRenderer) Render(m *entity.ReportModel) ([]byte, error) {
	var b bytes.Buffer
	rule := strings.Repeat("=", textWidth)
	line := strings.Repeat("-", textWidth)

	section := func(title string) {
		fmt.Fprintf(&b, "\n%s\n%s\n", title, line)
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, center("AWS COST OPTIMIZATION REPORT CARD", textWidth))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Generated: %s\n", m.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Run ID:    %s\n", m.RunID)
	if m.AccountID != "" {
		fmt.Fprintf(&b, "Account:   %s\n", m.AccountID)
	}

	section("EXECUTIVE SUMMARY")
	fmt.Fprintf(&b, "%-28s%d (%s %d optimized, %s %d with opportunities, %s %d failed)\n", "Analyses run:",
		m.Counts.Total,
		entity.StateOptimized.Glyph(), m.Counts.Optimized,
		entity.StateOpportunity.Glyph(), m.Counts.Opportunities,
		entity.StateError.Glyph(), m.Counts.Errors)
	fmt.Fprintf(&b, "%-28s%s\n", "Current monthly spend:", money.Format(m.Totals.CurrentMonthlyCost))
	fmt.Fprintf(&b, "%-28s%s\n", "Current yearly spend:", money.Format(m.Totals.CurrentYearlyCost))
	fmt.Fprintf(&b, "%-28s%s\n", "Total monthly savings:", money.Format(m.Totals.TotalMonthlySavings))
	fmt.Fprintf(&b, "%-28s%s\n", "TOTAL YEARLY SAVINGS:", money.Format(m.Totals.TotalYearlySavings))
	fmt.Fprintf(&b, "%-28s%s\n", "Potential cost reduction:", money.Percent(m.Totals.SavingsPercentage))

	section("SAVINGS BREAKDOWN BY CATEGORY")
	if len(m.Categories) == 0 {
		fmt.Fprintln(&b, "No analyzers were run.")
	} else {
		fmt.Fprintf(&b, "%-*s%*s%*s  %s\n", catWidth, "Category", amountWidth, "Monthly", amountWidth, "Yearly", "Analyzers")
		for _, c := range m.Categories {
			fmt.Fprintf(&b, "%-*s%*s%*s  %s\n", catWidth, c.Category,
				amountWidth, money.Format(c.Monthly), amountWidth, money.Format(c.Yearly),
				strings.Join(c.Analyzers, ", "))
		}
	}

	section("TOP RECOMMENDATIONS")
	if len(m.TopRecommendations) == 0 {
		fmt.Fprintf(&b, "%s Great job! All analyzed resources are already optimized.\n", entity.StateOptimized.Glyph())
	}
	for _, rec := range m.TopRecommendations {
		fmt.Fprintf(&b, "%2d. [%s] %s\n", rec.Rank, rec.AnalyzerName, stripANSI(rec.Description))
		fmt.Fprintf(&b, "    %s/month  %s/year\n", money.Format(rec.MonthlySavings), money.Format(rec.YearlySavings))
	}

	section("RECONCILIATION")
	fmt.Fprintf(&b, "%s%s%-*s%*s%*s%*s\n", pad("St", 4), pad("Analyzer", nameWidth), catWidth, "Category",
		amountWidth, "Current/mo", amountWidth, "Monthly", amountWidth, "Yearly")
	for _, res := range m.Results {
		fmt.Fprintf(&b, "%s%s%-*s%*s%*s%*s\n",
			pad(res.State.Glyph(), 4), pad(res.Name, nameWidth), catWidth, res.Category,
			amountWidth, money.Format(res.CurrentMonthlyCost),
			amountWidth, money.Format(res.MonthlySavings),
			amountWidth, money.Format(res.YearlySavings))
	}
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "%s%s%-*s%*s%*s%*s\n", pad("", 4), pad("TOTAL", nameWidth), catWidth, "",
		amountWidth, money.Format(m.Totals.CurrentMonthlyCost),
		amountWidth, money.Format(m.Totals.TotalMonthlySavings),
		amountWidth, money.Format(m.Totals.TotalYearlySavings))

	for _, res := range m.Results {
		recs := m.RecommendationsFor(res.AnalyzerID)
		if len(recs) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s %s (%s)\n", res.State.Glyph(), res.Name, res.RawReportPath)
		for _, rec := range recs {
			fmt.Fprintf(&b, "    #%-3d %s/year  %s\n", rec.Rank, money.Format(rec.YearlySavings), stripANSI(rec.Description))
		}
	}

	if hasDiagnostics(m) {
		section("DIAGNOSTICS")
		for _, res := range m.Results {
			for _, d := range res.Diagnostics {
				fmt.Fprintf(&b, "%s %s [%s] %s\n", entity.StateError.Glyph(), res.Name, d.Field, stripANSI(d.Message))
			}
		}
	}

	if failed := m.FailedResults(); len(failed) > 0 {
		section("FAILED ANALYSES")
		for _, res := range failed {
			fmt.Fprintf(&b, "%s %s: %s (raw report: %s)\n", res.State.Glyph(), res.Name, res.Reason, res.RawReportPath)
		}
	}

	section("PERFORMANCE")
	fmt.Fprintf(&b, "Wall time %s, analyzer time %s, speedup %.1fx\n",
		m.Performance.WallTime.Round(100*time.Millisecond), m.Performance.AnalyzerTime.Round(100*time.Millisecond), m.Performance.Speedup())

	section("NEXT STEPS")
	fmt.Fprintln(&b, "1. Review the raw analyzer reports in this directory for resource level detail.")
	fmt.Fprintln(&b, "2. Start with the top recommendations; they carry the largest yearly savings.")
	fmt.Fprintln(&b, "3. Re-run failed analyzers after fixing credentials or permissions.")
	fmt.Fprintln(&b, "4. Schedule this report periodically to track progress.")

	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintln(&b, "This report is read-only: no AWS resources were modified.")
	if r.footer != "" {
		fmt.Fprintln(&b, r.footer)
	}
	fmt.Fprintln(&b, rule)
	return b.Bytes(), nil
}

func hasDiagnostics(m *entity.ReportModel) bool {
	for _, res := range m.Results {
		if len(res.Diagnostics) > 0 {
			return true
		}
	}
	return false
}

// pad fits s into exactly w terminal cells.
func pad(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w-1, "…"), w)
}

func center(s string, w int) string {
	n := runewidth.StringWidth(s)
	if n >= w {
		return s
	}
	return strings.Repeat(" ", (w-n)/2) + s
}
