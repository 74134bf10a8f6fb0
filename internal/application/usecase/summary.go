package usecase

import (
	"fmt"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/diillson/aws-cost-report/pkg/console"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/shopspring/decimal"
)

// PrintSummary mostra no console o que foi publicado. Nenhum valor é recalculado aqui.
func (uc *ReportUseCase) PrintSummary(outcome *Outcome) {
	model := outcome.Model
	table := uc.console.CreateTable()
	for _, col := range []string{"", "Analyzer", "Category", "Monthly Savings", "Yearly Savings", "Status"} {
		table.AddColumn(col)
	}
	for _, r := range model.Results {
		table.AddRow(r.State.Glyph(), r.Name, string(r.Category),
			money.Format(r.MonthlySavings), money.Format(r.YearlySavings), stateColor(r.State)(r.State.Label()))
	}
	table.AddRow("", console.BrightCyan("TOTAL"), "",
		console.BrightCyan(money.Format(model.Totals.TotalMonthlySavings)), console.BrightCyan(money.Format(model.Totals.TotalYearlySavings)),
		fmt.Sprintf("%d ok / %d errors", model.Counts.Total-model.Counts.Errors, model.Counts.Errors))
	uc.console.Println(table.Render())

	uc.console.DisplaySavingsBars("Yearly Savings by Category", SavingsBars(model.Categories))

	if model.Totals.CurrentYearlyCost.IsPositive() {
		uc.console.LogInfo("Potential cost reduction: %s of %s/year",
			money.Percent(model.Totals.SavingsPercentage), money.Format(model.Totals.CurrentYearlyCost))
	}
	if model.Counts.Errors > 0 {
		uc.console.LogWarning("%d of %d analyses failed; see the Failed Analyses section", model.Counts.Errors, model.Counts.Total)
	}
	uc.console.LogSuccess("Report published to %s", outcome.Path)
	if outcome.Latest != "" {
		uc.console.LogInfo("Latest report: %s", outcome.Latest)
	}
}

func stateColor(s entity.State) func(a ...interface{}) string {
	switch s {
	case entity.StateOptimized:
		return console.BrightGreen
	case entity.StateOpportunity:
		return console.BrightYellow
	default:
		return console.BrightRed
	}
}

// SavingsBars scales each category against the largest one. Ratios are for display only.
func SavingsBars(categories []entity.CategoryBreakdown) []types.SavingsBar {
	largest := decimal.Zero
	for _, c := range categories {
		if c.Yearly.GreaterThan(largest) {
			largest = c.Yearly
		}
	}
	bars := make([]types.SavingsBar, 0, len(categories))
	for _, c := range categories {
		bar := types.SavingsBar{Label: string(c.Category), Amount: money.Format(c.Yearly)}
		if largest.IsPositive() {
			bar.Ratio = c.Yearly.Div(largest).InexactFloat64()
		}
		bars = append(bars, bar)
	}
	return bars
}
