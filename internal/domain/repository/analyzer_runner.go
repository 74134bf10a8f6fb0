package repository

import (
	"context"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
)

// AnalyzerRunner executes analyzers as isolated processes.
// It never returns an error: every outcome becomes a RawOutput, in the same order as specs.
type AnalyzerRunner interface {
	RunAll(ctx context.Context, specs []entity.AnalyzerSpec, onDone func(entity.RawOutput)) []entity.RawOutput
}
