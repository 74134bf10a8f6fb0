package service

import (
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
)

// ReportInput é tudo o que a montagem do modelo precisa.
type ReportInput struct {
	RunID       string
	AccountID   string
	GeneratedAt time.Time
	Results     []entity.AnalysisResult
	Policy      RankPolicy
	Performance entity.Performance
}

// BuildReport assembles the immutable report model. Results keep the order they were given in.
func BuildReport(in ReportInput) *entity.ReportModel {
	results := append([]entity.AnalysisResult(nil), in.Results...)
	totals, categories, counts := Aggregate(results)
	top, all := Rank(results, in.Policy)

	return &entity.ReportModel{
		GeneratedAt:           in.GeneratedAt.UTC().Truncate(time.Second),
		RunID:                 in.RunID,
		AccountID:             in.AccountID,
		Results:               results,
		Totals:                totals,
		Categories:            categories,
		Counts:                counts,
		TopRecommendations:    top,
		RankedRecommendations: all,
		Performance:           in.Performance,
	}
}
