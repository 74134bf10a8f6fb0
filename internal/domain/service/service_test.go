package service

import (
	"testing"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func spec(id, name string, c entity.Category) entity.AnalyzerSpec {
	return entity.AnalyzerSpec{ID: id, Name: name, Category: c}
}

func okResult(id, name string, c entity.Category, monthly, yearly string, recs ...entity.Recommendation) entity.AnalysisResult {
	out := entity.RawOutput{Spec: spec(id, name, c), Status: entity.ExecOk}
	return BuildResult(out, entity.Figures{
		MonthlySavings:  dec(monthly),
		YearlySavings:   dec(yearly),
		Recommendations: recs,
	})
}

func rec(desc, monthly, yearly string) entity.Recommendation {
	return entity.Recommendation{Description: desc, MonthlySavings: dec(monthly), YearlySavings: dec(yearly)}
}

func TestCategorize(t *testing.T) {
	require.Equal(t, entity.StateOptimized, okResult("a", "A", entity.CategoryStorage, "0", "0").State)
	require.Equal(t, entity.StateOpportunity, okResult("a", "A", entity.CategoryStorage, "0", "0.01").State)

	failed := BuildResult(entity.RawOutput{Spec: spec("c", "C", entity.CategoryNetwork), Status: entity.ExecFailed, Reason: "exit status 2"}, entity.Figures{})
	require.Equal(t, entity.StateError, failed.State)
}

func TestBuildResult_FailedContributesZero(t *testing.T) {
	out := entity.RawOutput{
		Spec:   spec("late", "Late Failure", entity.CategoryCompute),
		Status: entity.ExecFailed,
		Reason: "exit status 1",
	}
	r := BuildResult(out, entity.Figures{
		MonthlySavings:  dec("10"),
		YearlySavings:   dec("120"),
		Recommendations: []entity.Recommendation{rec("x", "10", "120")},
	})

	require.True(t, r.YearlySavings.IsZero())
	require.True(t, r.MonthlySavings.IsZero())
	require.Empty(t, r.Recommendations)
	require.Equal(t, "late_report.txt", r.RawReportPath)
	require.Len(t, r.Diagnostics, 2)
	require.Equal(t, "status", r.Diagnostics[0].Field)
	require.Contains(t, r.Diagnostics[1].Message, "$120.00/year")
}

func TestAggregate(t *testing.T) {
	results := []entity.AnalysisResult{
		okResult("ebs", "EBS Volumes", entity.CategoryStorage, "0.10", "1.20"),
		okResult("eip", "Elastic IPs", entity.CategoryNetwork, "7.30", "87.60"),
		okResult("snap", "EC2 Snapshots", entity.CategoryStorage, "0.20", "2.40"),
	}
	results[0].CurrentMonthlyCost = dec("100")
	results[0].CurrentYearlyCost = dec("1200")
	results[1].CurrentYearlyCost = dec("400")

	totals, categories, counts := Aggregate(results)

	require.Equal(t, "7.60", totals.TotalMonthlySavings.StringFixed(2))
	require.Equal(t, "91.20", totals.TotalYearlySavings.StringFixed(2))
	require.Equal(t, "1600.00", totals.CurrentYearlyCost.StringFixed(2))
	require.Equal(t, "5.70", totals.SavingsPercentage.StringFixed(2))

	require.Len(t, categories, 2)
	require.Equal(t, entity.CategoryStorage, categories[0].Category)
	require.Equal(t, []string{"ebs", "snap"}, categories[0].Analyzers)
	require.Equal(t, "3.60", categories[0].Yearly.StringFixed(2))
	require.Equal(t, entity.CategoryNetwork, categories[1].Category)

	require.Equal(t, entity.Counts{Total: 3, Opportunities: 3}, counts)
}

func TestAggregate_ZeroCostMeansZeroPercentage(t *testing.T) {
	totals, _, _ := Aggregate([]entity.AnalysisResult{okResult("a", "A", entity.CategoryStorage, "10", "120")})
	require.True(t, totals.SavingsPercentage.IsZero())
}

func TestAggregate_NoCentDrift(t *testing.T) {
	var results []entity.AnalysisResult
	for i := 0; i < 50; i++ {
		results = append(results, okResult("a", "A", entity.CategoryCompute, "0.01", "0.10"))
	}
	totals, _, _ := Aggregate(results)
	require.True(t, totals.TotalYearlySavings.Equal(dec("5")))
	require.True(t, totals.TotalMonthlySavings.Equal(dec("0.5")))
}

func TestAggregate_Idempotent(t *testing.T) {
	results := []entity.AnalysisResult{
		okResult("a", "A", entity.CategoryStorage, "33.33", "399.96"),
		okResult("b", "B", entity.CategoryDatabase, "0.07", "0.84"),
	}
	first, _, _ := Aggregate(results)
	second, _, _ := Aggregate(results)
	require.Equal(t, first.TotalYearlySavings.String(), second.TotalYearlySavings.String())
	require.Equal(t, first, second)
}

func TestRank_OrderAndTieBreak(t *testing.T) {
	results := []entity.AnalysisResult{
		okResult("z", "Zeta", entity.CategoryStorage, "0", "300", rec("zeta tie", "25", "300"), rec("zeta small", "1", "12")),
		okResult("a", "Alpha", entity.CategoryNetwork, "0", "300", rec("alpha tie", "25", "300")),
		okResult("m", "Mid", entity.CategoryCompute, "0", "900", rec("mid big", "75", "900")),
	}

	top, all := Rank(results, RankPolicy{TopK: 2})
	_, byName := Rank(results, RankPolicy{TieBreak: entity.TieBreakName})
	require.Equal(t, descriptions(all), descriptions(byName))

	require.Len(t, all, 4)
	require.Equal(t, []string{"mid big", "alpha tie", "zeta tie", "zeta small"}, descriptions(all))
	require.Equal(t, []int{1, 2, 3, 4}, ranks(all))
	require.Equal(t, []string{"mid big", "alpha tie"}, descriptions(top))

	_, registry := Rank(results, RankPolicy{TieBreak: entity.TieBreakRegistry})
	require.Equal(t, []string{"mid big", "zeta tie", "alpha tie", "zeta small"}, descriptions(registry))
}

func TestRank_Deterministic(t *testing.T) {
	results := []entity.AnalysisResult{
		okResult("b", "Beta", entity.CategoryStorage, "0", "10", rec("b1", "0", "10"), rec("b2", "0", "10")),
		okResult("a", "Alpha", entity.CategoryStorage, "0", "10", rec("a1", "0", "10")),
	}
	first, _ := Rank(results, RankPolicy{})
	second, _ := Rank(results, RankPolicy{})
	require.Equal(t, first, second)
	require.Equal(t, []string{"a1", "b1", "b2"}, descriptions(first))
}

func TestRank_SynthesizesRecommendationForBareSavings(t *testing.T) {
	r := okResult("eip", "Elastic IPs", entity.CategoryNetwork, "7.30", "87.60")
	top, _ := Rank([]entity.AnalysisResult{r}, RankPolicy{})

	require.Len(t, top, 1)
	require.Equal(t, "eip", top[0].AnalyzerID)
	require.Contains(t, top[0].Description, "eip_report.txt")
	require.True(t, top[0].YearlySavings.Equal(dec("87.6")))
}

func TestBuildReport_Scenario(t *testing.T) {
	a := okResult("a", "Analyzer A", entity.CategoryStorage, "100", "1200", rec("A item", "100", "1200"))
	b := okResult("b", "Analyzer B", entity.CategoryCompute, "450", "5400", rec("B item", "450", "5400"))
	c := BuildResult(entity.RawOutput{
		Spec:   spec("c", "Analyzer C", entity.CategoryNetwork),
		Status: entity.ExecTimedOut,
		Reason: "timed out after 5m0s",
	}, entity.Figures{})

	model := BuildReport(ReportInput{
		RunID:       "20261019_120000",
		GeneratedAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
		Results:     []entity.AnalysisResult{a, b, c},
	})

	require.Equal(t, "6600.00", model.Totals.TotalYearlySavings.StringFixed(2))
	require.Equal(t, []string{"B item", "A item"}, descriptions(model.TopRecommendations))
	require.Equal(t, entity.StateError, model.Results[2].State)
	require.True(t, model.Results[2].YearlySavings.IsZero())
	require.Equal(t, 1, model.Counts.Errors)
	require.Equal(t, []string{"a", "b", "c"}, []string{model.Results[0].AnalyzerID, model.Results[1].AnalyzerID, model.Results[2].AnalyzerID})

	sum := decimal.Zero
	for _, r := range model.Results {
		sum = sum.Add(r.YearlySavings)
	}
	require.True(t, sum.Equal(model.Totals.TotalYearlySavings))
}

func descriptions(recs []entity.RankedRecommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Description)
	}
	return out
}

func ranks(recs []entity.RankedRecommendation) []int {
	out := make([]int, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Rank)
	}
	return out
}
