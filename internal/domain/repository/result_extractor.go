package repository

import "github.com/diillson/aws-cost-report/internal/domain/entity"

// ResultExtractor turns raw analyzer output into figures. Anomalies become diagnostics.
type ResultExtractor interface {
	Extract(out entity.RawOutput) entity.Figures
}
