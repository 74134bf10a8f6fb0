package types

import (
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
)

// Settings is the validated configuration of one run: file values with CLI overrides applied.
type Settings struct {
	OutputDir        string
	Concurrency      int
	DefaultTimeout   time.Duration
	Top              int
	TieBreak         entity.TieBreak
	ReportTypes      []string
	KeepRuns         int
	DeriveYearlyCost bool
	ResolveAccount   bool
	Profile          string
	Region           string
	Source           string
	Analyzers        []entity.AnalyzerSpec
}
