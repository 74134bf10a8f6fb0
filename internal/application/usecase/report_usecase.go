package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/domain/repository"
	"github.com/diillson/aws-cost-report/internal/domain/service"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"go.uber.org/zap"
)

// StderrHeading separates an analyzer's stderr from its stdout in the raw report.
const StderrHeading = "ERRORS/WARNINGS:"

// ReportUseCase conduz uma execução completa: analyzers, extração, modelo, renderização e publicação.
type ReportUseCase struct {
	runner    repository.AnalyzerRunner
	extractor repository.ResultExtractor
	store     repository.RunStore
	renderers []repository.ReportRenderer
	awsRepo   repository.AWSRepository
	console   types.ConsoleInterface
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportUseCase creates the use case. awsRepo may be nil when the account id is not wanted.
func NewReportUseCase(
	runner repository.AnalyzerRunner,
	extractor repository.ResultExtractor,
	store repository.RunStore,
	renderers []repository.ReportRenderer,
	awsRepo repository.AWSRepository,
	console types.ConsoleInterface,
	logger *zap.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		runner:    runner,
		extractor: extractor,
		store:     store,
		renderers: renderers,
		awsRepo:   awsRepo,
		console:   console,
		logger:    logger,
		now:       time.Now,
	}
}

// Outcome is what a successful run produced.
type Outcome struct {
	Path   string
	Latest string
	Model  *entity.ReportModel
}

// RunReport executes every configured analyzer and publishes the report. Analyzer failures
// are part of the report; only a RunStoreError is returned.
func (uc *ReportUseCase) RunReport(ctx context.Context, settings *types.Settings) (*Outcome, error) {
	const op = "usecase.RunReport"

	started := uc.now()
	runID := uc.store.NewRunID(started)
	log := uc.logger.With(zap.String("op", op), zap.String("run_id", runID))
	log.Info("run started", zap.Int("analyzers", len(settings.Analyzers)), zap.Int("concurrency", settings.Concurrency))

	accountID := uc.resolveAccount(ctx, settings)

	progress := uc.console.ProgressWithTotal("Running analyzers", len(settings.Analyzers))
	outputs := uc.runner.RunAll(ctx, settings.Analyzers, func(out entity.RawOutput) {
		progress.Increment(fmt.Sprintf("%s %s", statusGlyph(out.Status), out.Spec.Name))
	})
	progress.Stop()
	wall := uc.now().Sub(started)

	results := make([]entity.AnalysisResult, 0, len(outputs))
	var analyzerTime time.Duration
	for _, out := range outputs {
		result := service.BuildResult(out, uc.extractor.Extract(out))
		analyzerTime += out.Duration
		results = append(results, result)

		log.Debug("analyzer finished",
			zap.String("analyzer", out.Spec.ID),
			zap.String("status", string(out.Status)),
			zap.Duration("duration", out.Duration),
			zap.String("yearly_savings", result.YearlySavings.StringFixed(2)),
			zap.Int("diagnostics", len(result.Diagnostics)))
		if result.Failed() {
			uc.console.LogError("%s: %s", result.Name, result.Reason)
		}
	}

	model := service.BuildReport(service.ReportInput{
		RunID:       runID,
		AccountID:   accountID,
		GeneratedAt: started,
		Results:     results,
		Policy:      service.RankPolicy{TopK: settings.Top, TieBreak: settings.TieBreak},
		Performance: entity.Performance{WallTime: wall, AnalyzerTime: analyzerTime},
	})

	status := uc.console.Status("Rendering reports...")
	defer status.Stop()

	artifacts, err := uc.render(model)
	if err != nil {
		return nil, err
	}
	for _, out := range outputs {
		artifacts = append(artifacts, entity.Artifact{Name: out.Spec.RawReportName(), Data: RawReport(out)})
	}

	status.Update(fmt.Sprintf("Publishing run %s...", runID))
	path, err := uc.store.Publish(ctx, entity.Run{ID: runID, Artifacts: artifacts})
	if err != nil {
		return nil, err
	}
	log.Info("run finished",
		zap.String("path", path),
		zap.String("total_yearly_savings", model.Totals.TotalYearlySavings.StringFixed(2)),
		zap.Int("errors", model.Counts.Errors))
	return &Outcome{Path: path, Latest: uc.store.LatestPath(), Model: model}, nil
}

// render runs every renderer before anything touches the disk, so a failing renderer
// leaves no run directory behind.
func (uc *ReportUseCase) render(model *entity.ReportModel) ([]entity.Artifact, error) {
	artifacts := make([]entity.Artifact, 0, len(uc.renderers)+len(model.Results))
	for _, r := range uc.renderers {
		data, err := r.Render(model)
		if err != nil {
			return nil, &types.RunStoreError{Op: "render " + r.Format(), Path: r.Filename(), Err: err}
		}
		artifacts = append(artifacts, entity.Artifact{Name: r.Filename(), Data: data})
	}
	return artifacts, nil
}

func (uc *ReportUseCase) resolveAccount(ctx context.Context, settings *types.Settings) string {
	if !settings.ResolveAccount || uc.awsRepo == nil {
		return ""
	}
	status := uc.console.Status("Resolving AWS account...")
	defer status.Stop()

	id, err := uc.awsRepo.GetAccountID(ctx)
	if err != nil {
		uc.logger.Warn("account id unavailable", zap.String("op", "usecase.resolveAccount"), zap.Error(err))
		uc.console.LogWarning("Could not resolve AWS account: %v", err)
		return ""
	}
	return id
}

// RawReport is the analyzer's stdout, byte for byte, followed by its stderr and,
// for failed runs, the reason.
func RawReport(out entity.RawOutput) []byte {
	var b bytes.Buffer
	b.Write(out.Stdout)
	if len(bytes.TrimSpace(out.Stderr)) > 0 {
		if b.Len() > 0 && !bytes.HasSuffix(b.Bytes(), []byte("\n")) {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "\n%s\n", StderrHeading)
		b.Write(out.Stderr)
	}
	if out.Status != entity.ExecOk {
		if b.Len() > 0 && !bytes.HasSuffix(b.Bytes(), []byte("\n")) {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "\nEXECUTION STATUS: %s (%s)\n", out.Status, out.Reason)
	}
	return b.Bytes()
}

func statusGlyph(s entity.ExecStatus) string {
	if s == entity.ExecOk {
		return "✓"
	}
	return "⚠"
}
