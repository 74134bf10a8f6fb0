package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/diillson/aws-cost-report/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-report/internal/adapter/driven/extract"
	"github.com/diillson/aws-cost-report/internal/adapter/driven/store"
	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/domain/repository"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type fakeRunner struct {
	outputs []entity.RawOutput
}

func (f *fakeRunner) RunAll(_ context.Context, specs []entity.AnalyzerSpec, onDone func(entity.RawOutput)) []entity.RawOutput {
	out := make([]entity.RawOutput, len(specs))
	// Completion order is the reverse of registry order.
	for i := len(specs) - 1; i >= 0; i-- {
		out[i] = f.outputs[i]
		out[i].Spec = specs[i]
		onDone(out[i])
	}
	return out
}

type fakeStore struct {
	published *entity.Run
	err       error
}

func (f *fakeStore) NewRunID(now time.Time) string { return now.Format("20060102_150405") }

func (f *fakeStore) Publish(_ context.Context, run entity.Run) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = &run
	return "/reports/" + run.ID, nil
}

func (f *fakeStore) LatestPath() string { return "/reports/latest" }

type failingRenderer struct{}

func (failingRenderer) Format() string                             { return "broken" }
func (failingRenderer) Filename() string                           { return "broken.out" }
func (failingRenderer) Render(*entity.ReportModel) ([]byte, error) { return nil, errors.New("boom") }

type fakeAWS struct {
	id  string
	err error
}

func (f fakeAWS) GetAccountID(context.Context) (string, error) { return f.id, f.err }

type nopConsole struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
	statuses []string
	progress int
}

func (c *nopConsole) Println(...interface{}) {}

func (c *nopConsole) LogInfo(string, ...interface{}) {}

func (c *nopConsole) LogSuccess(string, ...interface{}) {}

func (c *nopConsole) CreateTable() types.TableInterface { return &nopTable{} }

func (c *nopConsole) DisplaySavingsBars(string, []types.SavingsBar) {}

func (c *nopConsole) ProgressWithTotal(string, int) types.ProgressHandle {
	return &countingProgress{console: c}
}

func (c *nopConsole) LogWarning(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, fmt.Sprintf(format, a...))
}

func (c *nopConsole) LogError(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, fmt.Sprintf(format, a...))
}

func (c *nopConsole) Status(message string) types.StatusHandle {
	h := &statusHandle{console: c}
	h.Update(message)
	return h
}

type statusHandle struct{ console *nopConsole }

func (h *statusHandle) Update(message string) {
	h.console.mu.Lock()
	defer h.console.mu.Unlock()
	h.console.statuses = append(h.console.statuses, message)
}

func (h *statusHandle) Stop() {}

type countingProgress struct{ console *nopConsole }

func (p *countingProgress) Increment(string) {
	p.console.mu.Lock()
	defer p.console.mu.Unlock()
	p.console.progress++
}
func (p *countingProgress) Stop() {}

type nopTable struct{}

func (*nopTable) AddColumn(string, ...interface{}) {}
func (*nopTable) AddRow(...interface{})            {}
func (*nopTable) Render() string                   { return "" }

func scenario() ([]entity.AnalyzerSpec, []entity.RawOutput) {
	specs := []entity.AnalyzerSpec{
		{ID: "a", Name: "Analyzer A", Category: entity.CategoryStorage, Command: []string{"a"}},
		{ID: "b", Name: "Analyzer B", Category: entity.CategoryNetwork, Command: []string{"b"}},
		{ID: "c", Name: "Analyzer C", Category: entity.CategoryCompute, Command: []string{"c"}},
	}
	outputs := []entity.RawOutput{
		{Status: entity.ExecOk, Duration: time.Second, Stdout: []byte(
			"Monthly Savings: $100.00\nYearly Savings: $1,200.00\n- Delete old snapshots: $100/month ($1,200/year)\n")},
		{Status: entity.ExecOk, Duration: 2 * time.Second, Stdout: []byte(
			"Monthly Savings: $450\nYearly Savings: $5,400.00\n- Release idle IPs saves $450/month ($5,400/year)\n"),
			Stderr: []byte("throttled once, retried\n")},
		{Status: entity.ExecTimedOut, Reason: "timed out after 5m0s", Duration: 5 * time.Minute, Stdout: []byte(
			"Monthly Savings: $999\n")},
	}
	return specs, outputs
}

func newUseCase(runner repository.AnalyzerRunner, st repository.RunStore, renderers []repository.ReportRenderer, aws repository.AWSRepository, console types.ConsoleInterface) *ReportUseCase {
	uc := NewReportUseCase(runner, extract.NewDispatcher(extract.Options{DeriveYearlyCost: true}), st, renderers, aws, console, zap.NewNop())
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return uc
}

func TestRunReportScenarioPublishesReconciledReport(t *testing.T) {
	specs, outputs := scenario()
	root := t.TempDir()
	renderers, err := export.NewRenderers(nil, "")
	require.NoError(t, err)
	console := &nopConsole{}

	uc := newUseCase(&fakeRunner{outputs: outputs}, store.NewRunStore(root, 0, zap.NewNop()), renderers, nil, console)
	outcome, err := uc.RunReport(context.Background(), &types.Settings{Analyzers: specs, Top: 5})
	require.NoError(t, err)

	model := outcome.Model
	require.Equal(t, "6600.00", model.Totals.TotalYearlySavings.StringFixed(2))
	require.Equal(t, "550.00", model.Totals.TotalMonthlySavings.StringFixed(2))
	require.Equal(t, []string{"a", "b", "c"}, []string{model.Results[0].AnalyzerID, model.Results[1].AnalyzerID, model.Results[2].AnalyzerID})
	require.Equal(t, entity.StateError, model.Results[2].State)
	require.True(t, model.Results[2].YearlySavings.IsZero())
	require.Equal(t, "b", model.TopRecommendations[0].AnalyzerID)
	require.Equal(t, "a", model.TopRecommendations[1].AnalyzerID)
	require.Equal(t, 5*time.Minute+3*time.Second, model.Performance.AnalyzerTime)

	require.Equal(t, 3, console.progress)
	require.Empty(t, console.warnings)
	require.Equal(t, []string{"Analyzer C: timed out after 5m0s"}, console.errors)
	require.Equal(t, []string{"Rendering reports...", "Publishing run 20260301_093000..."}, console.statuses)

	for _, name := range []string{"summary.txt", "data.json", "index.html", "a_report.txt", "b_report.txt", "c_report.txt"} {
		require.FileExists(t, filepath.Join(outcome.Path, name))
	}
	data, err := os.ReadFile(filepath.Join(root, "latest", "data.json"))
	require.NoError(t, err)
	require.Equal(t, "6600.00", gjson.GetBytes(data, "summary.total_yearly_savings").Raw)
	require.Equal(t, "error", gjson.GetBytes(data, "analyses.2.state").String())

	raw, err := os.ReadFile(filepath.Join(outcome.Path, "b_report.txt"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "Yearly Savings: $5,400.00\n- Release idle IPs")
	require.Contains(t, string(raw), "\nERRORS/WARNINGS:\nthrottled once, retried\n")

	raw, err = os.ReadFile(filepath.Join(outcome.Path, "c_report.txt"))
	require.NoError(t, err)
	require.Contains(t, string(raw), "EXECUTION STATUS: timed_out (timed out after 5m0s)")

	require.Equal(t, filepath.Join(root, "latest"), outcome.Latest)
	uc.PrintSummary(outcome)
}

func TestRunReportAllAnalyzersFailStillPublishes(t *testing.T) {
	specs, _ := scenario()
	outputs := []entity.RawOutput{
		{Status: entity.ExecFailed, Reason: "exit status 2", Stderr: []byte("AccessDenied\n")},
		{Status: entity.ExecFailed, Reason: "fork/exec ./b: no such file or directory"},
		{Status: entity.ExecTimedOut, Reason: "timed out after 1s"},
	}
	st := &fakeStore{}

	outcome, err := newUseCase(&fakeRunner{outputs: outputs}, st, []repository.ReportRenderer{export.NewJSONRenderer()}, nil, &nopConsole{}).
		RunReport(context.Background(), &types.Settings{Analyzers: specs})
	require.NoError(t, err)
	require.Equal(t, 3, outcome.Model.Counts.Errors)
	require.True(t, outcome.Model.Totals.TotalYearlySavings.IsZero())
	require.Empty(t, outcome.Model.TopRecommendations)
	require.Len(t, st.published.Artifacts, 4)
	require.Equal(t, "20260301_093000", st.published.ID)
}

func TestRunReportStoreFailureIsFatal(t *testing.T) {
	specs, outputs := scenario()
	storeErr := &types.RunStoreError{Op: "publish run directory", Path: "/x", Err: os.ErrPermission}

	_, err := newUseCase(&fakeRunner{outputs: outputs}, &fakeStore{err: storeErr}, nil, nil, &nopConsole{}).
		RunReport(context.Background(), &types.Settings{Analyzers: specs})
	require.ErrorIs(t, err, os.ErrPermission)
	require.True(t, types.IsFatal(err))
}

func TestRunReportRendererFailurePublishesNothing(t *testing.T) {
	specs, outputs := scenario()
	st := &fakeStore{}

	_, err := newUseCase(&fakeRunner{outputs: outputs}, st, []repository.ReportRenderer{failingRenderer{}}, nil, &nopConsole{}).
		RunReport(context.Background(), &types.Settings{Analyzers: specs})
	require.ErrorContains(t, err, "render broken")
	require.True(t, types.IsFatal(err))
	require.Nil(t, st.published)
}

func TestRunReportAccountID(t *testing.T) {
	specs, outputs := scenario()

	tests := []struct {
		name     string
		resolve  bool
		aws      repository.AWSRepository
		want     string
		warnings int
	}{
		{"resolved", true, fakeAWS{id: "123456789012"}, "123456789012", 0},
		{"not requested", false, fakeAWS{id: "123456789012"}, "", 0},
		{"lookup fails", true, fakeAWS{err: errors.New("no credentials")}, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			console := &nopConsole{}
			outcome, err := newUseCase(&fakeRunner{outputs: outputs}, &fakeStore{}, nil, tt.aws, console).
				RunReport(context.Background(), &types.Settings{Analyzers: specs, ResolveAccount: tt.resolve})
			require.NoError(t, err)
			require.Equal(t, tt.want, outcome.Model.AccountID)
			require.Len(t, console.warnings, tt.warnings)
		})
	}
}

func TestRunReportTieBreakFromSettings(t *testing.T) {
	specs := []entity.AnalyzerSpec{
		{ID: "z", Name: "Zeta", Category: entity.CategoryStorage, Command: []string{"z"}},
		{ID: "a", Name: "Alpha", Category: entity.CategoryNetwork, Command: []string{"a"}},
	}
	stdout := []byte("Monthly Savings: $100\nYearly Savings: $1,200\n- Same figure: $100/month ($1,200/year)\n")
	outputs := []entity.RawOutput{{Status: entity.ExecOk, Stdout: stdout}, {Status: entity.ExecOk, Stdout: stdout}}

	for tieBreak, want := range map[entity.TieBreak]string{
		entity.TieBreakName:     "a",
		entity.TieBreakRegistry: "z",
	} {
		outcome, err := newUseCase(&fakeRunner{outputs: outputs}, &fakeStore{}, nil, nil, &nopConsole{}).
			RunReport(context.Background(), &types.Settings{Analyzers: specs, TieBreak: tieBreak})
		require.NoError(t, err)
		require.Equal(t, want, outcome.Model.TopRecommendations[0].AnalyzerID, string(tieBreak))
	}
}

func TestRawReport(t *testing.T) {
	require.Equal(t, "out\n", string(RawReport(entity.RawOutput{Status: entity.ExecOk, Stdout: []byte("out\n")})))
	require.Equal(t, "out\n\nERRORS/WARNINGS:\nwarn\n",
		string(RawReport(entity.RawOutput{Status: entity.ExecOk, Stdout: []byte("out"), Stderr: []byte("warn\n")})))
	require.Equal(t, "\nEXECUTION STATUS: failed (exit status 1)\n",
		string(RawReport(entity.RawOutput{Status: entity.ExecFailed, Reason: "exit status 1", Stderr: []byte("  \n")})))
}

func TestSavingsBars(t *testing.T) {
	specs, outputs := scenario()
	outcome, err := newUseCase(&fakeRunner{outputs: outputs}, &fakeStore{}, nil, nil, &nopConsole{}).
		RunReport(context.Background(), &types.Settings{Analyzers: specs})
	require.NoError(t, err)

	bars := SavingsBars(outcome.Model.Categories)
	require.Len(t, bars, 3)
	require.Equal(t, "Storage", bars[0].Label)
	require.Equal(t, "$1,200.00", bars[0].Amount)
	require.InDelta(t, 1200.0/5400.0, bars[0].Ratio, 1e-9)
	require.Equal(t, 1.0, bars[1].Ratio)
	require.Zero(t, bars[2].Ratio)
}
