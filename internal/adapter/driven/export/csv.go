package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/pkg/money"
)

// CSVRenderer writes one row per analysis plus a totals row.
type CSVRenderer struct{}

// NewCSVRenderer creates a CSVRenderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (r *CSVRenderer) Format() string   { return FormatCSV }
func (r *CSVRenderer) Filename() string { return "analyses.csv" }

// Render implements repository.ReportRenderer.
func (r *CSVRenderer) Render(m *entity.ReportModel) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{
		"Analyzer ID", "Analyzer", "Category", "Status", "State",
		"Current Monthly Cost", "Current Yearly Cost", "Monthly Savings", "Yearly Savings",
		"Recommendations", "Diagnostics", "Raw Report",
	}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, res := range m.Results {
		var recs []string
		for _, rec := range res.Recommendations {
			recs = append(recs, fmt.Sprintf("%s (%s/year)", stripANSI(rec.Description), money.Format(rec.YearlySavings)))
		}
		var diags []string
		for _, d := range res.Diagnostics {
			diags = append(diags, fmt.Sprintf("[%s] %s", d.Field, stripANSI(d.Message)))
		}
		record := []string{
			res.AnalyzerID, res.Name, string(res.Category), string(res.Status), res.State.Label(),
			money.Plain(res.CurrentMonthlyCost), money.Plain(res.CurrentYearlyCost),
			money.Plain(res.MonthlySavings), money.Plain(res.YearlySavings),
			strings.Join(recs, "\n"), strings.Join(diags, "\n"), res.RawReportPath,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	total := []string{
		"TOTAL", "", "", "", "",
		money.Plain(m.Totals.CurrentMonthlyCost), money.Plain(m.Totals.CurrentYearlyCost),
		money.Plain(m.Totals.TotalMonthlySavings), money.Plain(m.Totals.TotalYearlySavings),
		"", "", "",
	}
	if err := writer.Write(total); err != nil {
		return nil, fmt.Errorf("error writing CSV totals: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}
