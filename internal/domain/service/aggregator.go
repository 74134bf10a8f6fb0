package service

import (
	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate folds results into totals, per category breakdowns and state counts in one pass.
// A zero current yearly cost yields a zero savings percentage.
func Aggregate(results []entity.AnalysisResult) (entity.Totals, []entity.CategoryBreakdown, entity.Counts) {
	totals := entity.Totals{
		TotalMonthlySavings: decimal.Zero,
		TotalYearlySavings:  decimal.Zero,
		CurrentMonthlyCost:  decimal.Zero,
		CurrentYearlyCost:   decimal.Zero,
		SavingsPercentage:   decimal.Zero,
	}
	byCategory := map[entity.Category]*entity.CategoryBreakdown{}
	var counts entity.Counts

	for _, r := range results {
		totals.TotalMonthlySavings = totals.TotalMonthlySavings.Add(r.MonthlySavings)
		totals.TotalYearlySavings = totals.TotalYearlySavings.Add(r.YearlySavings)
		totals.CurrentMonthlyCost = totals.CurrentMonthlyCost.Add(r.CurrentMonthlyCost)
		totals.CurrentYearlyCost = totals.CurrentYearlyCost.Add(r.CurrentYearlyCost)

		cb, ok := byCategory[r.Category]
		if !ok {
			cb = &entity.CategoryBreakdown{Category: r.Category, Monthly: decimal.Zero, Yearly: decimal.Zero}
			byCategory[r.Category] = cb
		}
		cb.Monthly = cb.Monthly.Add(r.MonthlySavings)
		cb.Yearly = cb.Yearly.Add(r.YearlySavings)
		cb.Analyzers = append(cb.Analyzers, r.AnalyzerID)

		counts.Total++
		switch r.State {
		case entity.StateOptimized:
			counts.Optimized++
		case entity.StateOpportunity:
			counts.Opportunities++
		default:
			counts.Errors++
		}
	}

	if totals.CurrentYearlyCost.IsPositive() {
		totals.SavingsPercentage = totals.TotalYearlySavings.
			Mul(hundred).
			Div(totals.CurrentYearlyCost).
			Round(money.Cents)
	}

	var categories []entity.CategoryBreakdown
	for _, c := range entity.Categories() {
		if cb, ok := byCategory[c]; ok {
			categories = append(categories, *cb)
		}
	}
	return totals, categories, counts
}
