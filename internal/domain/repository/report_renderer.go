package repository

import "github.com/diillson/aws-cost-report/internal/domain/entity"

// ReportRenderer é uma função pura do ReportModel para um artefato.
type ReportRenderer interface {
	Format() string
	Filename() string
	Render(model *entity.ReportModel) ([]byte, error)
}
