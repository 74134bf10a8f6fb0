package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Totals are computed once by the aggregator. Renderers only read them.
type Totals struct {
	TotalMonthlySavings decimal.Decimal
	TotalYearlySavings  decimal.Decimal
	CurrentMonthlyCost  decimal.Decimal
	CurrentYearlyCost   decimal.Decimal
	SavingsPercentage   decimal.Decimal
}

// CategoryBreakdown soma as economias de uma categoria.
type CategoryBreakdown struct {
	Category  Category
	Monthly   decimal.Decimal
	Yearly    decimal.Decimal
	Analyzers []string
}

// Counts summarizes result states.
type Counts struct {
	Total         int
	Optimized     int
	Opportunities int
	Errors        int
}

// TieBreak decides the order of recommendations with equal yearly savings.
type TieBreak string

const (
	// TieBreakName orders ties by analyzer display name, ascending. The zero value means this.
	TieBreakName TieBreak = "name"
	// TieBreakRegistry keeps ties in analyzer registry order.
	TieBreakRegistry TieBreak = "registry"
)

// ParseTieBreak accepts "name", "registry" or empty for the default.
func ParseTieBreak(s string) (TieBreak, error) {
	switch TieBreak(strings.ToLower(strings.TrimSpace(s))) {
	case "", TieBreakName:
		return TieBreakName, nil
	case TieBreakRegistry:
		return TieBreakRegistry, nil
	}
	return "", fmt.Errorf("tie_break %q must be name or registry", s)
}

// RankedRecommendation is a recommendation with the analyzer it came from and its global rank.
type RankedRecommendation struct {
	Rank         int
	AnalyzerID   string
	AnalyzerName string
	Recommendation
}

// Performance descreve o tempo de execução da rodada.
type Performance struct {
	WallTime     time.Duration
	AnalyzerTime time.Duration
}

// Speedup is the ratio between summed analyzer time and wall time.
func (p Performance) Speedup() float64 {
	if p.WallTime <= 0 {
		return 0
	}
	return p.AnalyzerTime.Seconds() / p.WallTime.Seconds()
}

// ReportModel is the canonical, format agnostic snapshot of one run.
// It must not be modified once handed to renderers.
type ReportModel struct {
	GeneratedAt           time.Time
	RunID                 string
	AccountID             string
	Results               []AnalysisResult
	Totals                Totals
	Categories            []CategoryBreakdown
	Counts                Counts
	TopRecommendations    []RankedRecommendation
	RankedRecommendations []RankedRecommendation
	Performance           Performance
}

// FailedResults returns the results that ended with an error state, in report order.
func (m *ReportModel) FailedResults() []AnalysisResult {
	var out []AnalysisResult
	for _, r := range m.Results {
		if r.State == StateError {
			out = append(out, r)
		}
	}
	return out
}

// RecommendationsFor returns the ranked recommendations of one analyzer, keeping global order.
func (m *ReportModel) RecommendationsFor(analyzerID string) []RankedRecommendation {
	var out []RankedRecommendation
	for _, rec := range m.RankedRecommendations {
		if rec.AnalyzerID == analyzerID {
			out = append(out, rec)
		}
	}
	return out
}
