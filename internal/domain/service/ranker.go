package service

import (
	"sort"
	"strings"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
)

// DefaultTopK is how many recommendations the report highlights.
const DefaultTopK = 5

// RankPolicy configures the ranker.
type RankPolicy struct {
	TopK     int
	TieBreak entity.TieBreak
}

// Rank flattens every recommendation, orders them by yearly savings descending and
// returns the top K together with the full ranked list.
func Rank(results []entity.AnalysisResult, policy RankPolicy) (top, all []entity.RankedRecommendation) {
	for _, r := range results {
		for _, rec := range r.Recommendations {
			all = append(all, entity.RankedRecommendation{
				AnalyzerID:     r.AnalyzerID,
				AnalyzerName:   r.Name,
				Recommendation: rec,
			})
		}
		if len(r.Recommendations) == 0 && r.YearlySavings.IsPositive() {
			all = append(all, entity.RankedRecommendation{
				AnalyzerID:   r.AnalyzerID,
				AnalyzerName: r.Name,
				Recommendation: entity.Recommendation{
					Description:    "Review the " + r.Name + " report (" + r.RawReportPath + ")",
					MonthlySavings: r.MonthlySavings,
					YearlySavings:  r.YearlySavings,
				},
			})
		}
	}

	// Stable: equal keys keep registry order, then item order.
	sort.SliceStable(all, func(i, j int) bool {
		if c := all[i].YearlySavings.Cmp(all[j].YearlySavings); c != 0 {
			return c > 0
		}
		if policy.TieBreak != entity.TieBreakRegistry {
			return strings.ToLower(all[i].AnalyzerName) < strings.ToLower(all[j].AnalyzerName)
		}
		return false
	})

	for i := range all {
		all[i].Rank = i + 1
	}

	k := policy.TopK
	if k <= 0 {
		k = DefaultTopK
	}
	if k > len(all) {
		k = len(all)
	}
	top = append([]entity.RankedRecommendation(nil), all[:k]...)
	return top, all
}
