// Package service holds the side-effect free stages of the report pipeline.
package service

import (
	"fmt"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/diillson/aws-cost-report/pkg/money"
)

// Categorize derives the presentation state of a result.
func Categorize(r entity.AnalysisResult) entity.State {
	switch {
	case r.Failed():
		return entity.StateError
	case r.YearlySavings.IsPositive():
		return entity.StateOpportunity
	default:
		return entity.StateOptimized
	}
}

// BuildResult combines what the runner captured with what the extractor found.
// Results of failed or timed out analyzers keep their diagnostics but contribute zero.
func BuildResult(out entity.RawOutput, fig entity.Figures) entity.AnalysisResult {
	r := entity.AnalysisResult{
		AnalyzerID:    out.Spec.ID,
		Name:          out.Spec.Name,
		Category:      out.Spec.Category,
		Status:        out.Status,
		Reason:        out.Reason,
		ExitCode:      out.ExitCode,
		RawReportPath: out.Spec.RawReportName(),
		Duration:      out.Duration,
	}

	if out.Status == entity.ExecOk {
		r.CurrentMonthlyCost = fig.CurrentMonthlyCost
		r.CurrentYearlyCost = fig.CurrentYearlyCost
		r.MonthlySavings = fig.MonthlySavings
		r.YearlySavings = fig.YearlySavings
		r.Recommendations = fig.Recommendations
		r.Diagnostics = fig.Diagnostics
	} else {
		execErr := &types.AnalyzerExecutionError{
			AnalyzerID: out.Spec.ID,
			TimedOut:   out.Status == entity.ExecTimedOut,
			Err:        fmt.Errorf("%s", out.Reason),
		}
		r.Diagnostics = append(r.Diagnostics, entity.Diagnostic{Field: "status", Message: execErr.Error()})
		if fig.MonthlySavings.IsPositive() || fig.YearlySavings.IsPositive() || len(fig.Recommendations) > 0 {
			r.Diagnostics = append(r.Diagnostics, entity.Diagnostic{
				Field: "partial_output",
				Message: fmt.Sprintf("partial report stated %s/month and %s/year with %d recommendation(s); excluded from totals",
					money.Format(fig.MonthlySavings), money.Format(fig.YearlySavings), len(fig.Recommendations)),
			})
		}
	}

	r.State = Categorize(r)
	return r
}
