//go:build unix

package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func shell(id, script string) entity.AnalyzerSpec {
	return entity.AnalyzerSpec{
		ID:       id,
		Name:     id,
		Category: entity.CategoryCompute,
		Command:  []string{"/bin/sh", "-c", script},
	}
}

func newRunner(opts Options) *ProcessRunner {
	return NewProcessRunner(opts, zap.NewNop()).(*ProcessRunner)
}

func TestRun_Success(t *testing.T) {
	r := newRunner(Options{})
	out := r.run(context.Background(), shell("ok", `echo 'Monthly Savings: $1.00'; echo warn >&2`))

	require.Equal(t, entity.ExecOk, out.Status)
	require.Equal(t, 0, out.ExitCode)
	require.Equal(t, "Monthly Savings: $1.00\n", string(out.Stdout))
	require.Equal(t, "warn\n", string(out.Stderr))
	require.Empty(t, out.Reason)
}

func TestRun_NonZeroExitKeepsOutput(t *testing.T) {
	r := newRunner(Options{})
	out := r.run(context.Background(), shell("late", `echo 'Yearly Savings: $12.00'; exit 3`))

	require.Equal(t, entity.ExecFailed, out.Status)
	require.Equal(t, 3, out.ExitCode)
	require.Equal(t, "exit status 3", out.Reason)
	require.Contains(t, string(out.Stdout), "Yearly Savings")
}

func TestRun_TimeoutKillsProcessGroup(t *testing.T) {
	r := newRunner(Options{})
	spec := shell("slow", `echo 'Monthly Savings: $2.00'; sleep 30; echo never`)
	spec.Timeout = 300 * time.Millisecond

	start := time.Now()
	out := r.run(context.Background(), spec)

	require.Equal(t, entity.ExecTimedOut, out.Status)
	require.Equal(t, "timed out after 300ms", out.Reason)
	require.Equal(t, "Monthly Savings: $2.00\n", string(out.Stdout))
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_StartFailure(t *testing.T) {
	r := newRunner(Options{})
	out := r.run(context.Background(), entity.AnalyzerSpec{ID: "missing", Command: []string{"/nonexistent/analyzer"}})

	require.Equal(t, entity.ExecFailed, out.Status)
	require.NotEmpty(t, out.Reason)
	require.Equal(t, -1, out.ExitCode)
}

func TestRun_EmptyCommand(t *testing.T) {
	r := newRunner(Options{})
	out := r.run(context.Background(), entity.AnalyzerSpec{ID: "empty"})

	require.Equal(t, entity.ExecFailed, out.Status)
	require.Equal(t, "empty command", out.Reason)
}

func TestRun_BuiltinCommand(t *testing.T) {
	r := newRunner(Options{Executable: "/bin/echo"})
	out := r.run(context.Background(), entity.AnalyzerSpec{ID: "eip", Command: []string{"builtin:elastic-ips", "--verbose"}})

	require.Equal(t, entity.ExecOk, out.Status)
	require.Equal(t, "probe elastic-ips --verbose\n", string(out.Stdout))
}

func TestRun_BuiltinWithoutExecutable(t *testing.T) {
	r := newRunner(Options{})
	out := r.run(context.Background(), entity.AnalyzerSpec{ID: "eip", Command: []string{"builtin:elastic-ips"}})

	require.Equal(t, entity.ExecFailed, out.Status)
	require.Contains(t, out.Reason, "unknown built-in analyzer")
}

func TestRun_Environment(t *testing.T) {
	r := newRunner(Options{Env: map[string]string{"AWS_REGION": "eu-west-1", "SHARED": "runner"}})
	spec := shell("env", `echo "$AWS_REGION $SHARED"`)
	spec.Env = map[string]string{"SHARED": "spec"}

	out := r.run(context.Background(), spec)
	require.Equal(t, "eu-west-1 spec\n", string(out.Stdout))
}

func TestRun_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	r := newRunner(Options{})
	spec := shell("pwd", `pwd -P`)
	spec.Dir = dir

	out := r.run(context.Background(), spec)
	require.Equal(t, entity.ExecOk, out.Status)
	require.NotEmpty(t, out.Stdout)
}

func TestRunAll_OrderIndependentOfCompletion(t *testing.T) {
	r := newRunner(Options{Concurrency: 3})
	specs := []entity.AnalyzerSpec{
		shell("first", `sleep 0.4; echo first`),
		shell("second", `sleep 0.2; echo second`),
		shell("third", `echo third`),
	}

	var mu sync.Mutex
	var completed []string
	results := r.RunAll(context.Background(), specs, func(out entity.RawOutput) {
		mu.Lock()
		defer mu.Unlock()
		completed = append(completed, out.Spec.ID)
	})

	require.Len(t, results, 3)
	for i, spec := range specs {
		require.Equal(t, spec.ID, results[i].Spec.ID)
		require.Equal(t, spec.ID+"\n", string(results[i].Stdout))
	}
	require.ElementsMatch(t, []string{"first", "second", "third"}, completed)
	require.Equal(t, "third", completed[0])
}

func TestRunAll_TimeoutDoesNotCancelSiblings(t *testing.T) {
	r := newRunner(Options{Concurrency: 2})
	slow := shell("slow", `sleep 30`)
	slow.Timeout = 200 * time.Millisecond
	specs := []entity.AnalyzerSpec{
		slow,
		shell("steady", `sleep 0.5; echo 'Yearly Savings: $5.00'`),
		shell("broken", `exit 1`),
	}

	results := r.RunAll(context.Background(), specs, nil)

	require.Equal(t, entity.ExecTimedOut, results[0].Status)
	require.Equal(t, entity.ExecOk, results[1].Status)
	require.Contains(t, string(results[1].Stdout), "Yearly Savings")
	require.Equal(t, entity.ExecFailed, results[2].Status)
}

func TestRunAll_BoundedPool(t *testing.T) {
	r := newRunner(Options{Concurrency: 2})
	var specs []entity.AnalyzerSpec
	for _, id := range []string{"a", "b", "c", "d"} {
		specs = append(specs, shell(id, `sleep 0.3`))
	}

	start := time.Now()
	results := r.RunAll(context.Background(), specs, nil)

	require.Len(t, results, 4)
	require.GreaterOrEqual(t, time.Since(start), 550*time.Millisecond)
}
