package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/domain/repository"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultConcurrency keeps upstream API rate limits in mind.
	DefaultConcurrency = 4
	// DefaultTimeout applies to analyzers without their own timeout.
	DefaultTimeout = 5 * time.Minute

	waitDelay = 5 * time.Second
)

// Options configures a ProcessRunner.
type Options struct {
	Concurrency    int
	DefaultTimeout time.Duration
	// Executable serves "builtin:<probe>" commands as "<Executable> probe <probe>".
	Executable string
	// Env is added to every analyzer's environment.
	Env map[string]string
}

// ProcessRunner executa cada analyzer como um processo isolado, num pool limitado.
type ProcessRunner struct {
	opts   Options
	logger *zap.Logger
}

// NewProcessRunner creates a runner; zero options fall back to the defaults.
func NewProcessRunner(opts Options, logger *zap.Logger) repository.AnalyzerRunner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = DefaultTimeout
	}
	return &ProcessRunner{opts: opts, logger: logger}
}

// RunAll runs every spec through the pool. Results keep the order of specs regardless
// of completion order. onDone may be called from several goroutines at once.
func (r *ProcessRunner) RunAll(ctx context.Context, specs []entity.AnalyzerSpec, onDone func(entity.RawOutput)) []entity.RawOutput {
	results := make([]entity.RawOutput, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			// Failures are recorded on the result; returning nil keeps siblings running.
			results[i] = r.run(gctx, spec)
			if onDone != nil {
				onDone(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *ProcessRunner) run(ctx context.Context, spec entity.AnalyzerSpec) entity.RawOutput {
	out := entity.RawOutput{Spec: spec, Started: time.Now(), ExitCode: -1}
	log := r.logger.With(zap.String("op", "runner.run"), zap.String("analyzer", spec.ID))

	argv, err := r.command(spec)
	if err != nil {
		return r.failed(out, log, &types.AnalyzerExecutionError{AnalyzerID: spec.ID, Err: err})
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = r.opts.DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = r.environ(spec)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	configureProcess(cmd)

	log.Debug("analyzer started", zap.Strings("argv", argv), zap.Duration("timeout", timeout))
	err = cmd.Run()
	out.Duration = time.Since(out.Started)
	out.Stdout = stdout.Bytes()
	out.Stderr = stderr.Bytes()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		out.Status = entity.ExecOk
		out.ExitCode = 0
		log.Debug("analyzer finished", zap.Duration("duration", out.Duration), zap.Int("stdout_bytes", len(out.Stdout)))
		return out
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		out.Status = entity.ExecTimedOut
		out.Reason = fmt.Sprintf("timed out after %s", timeout)
		log.Warn("analyzer timed out", zap.Duration("timeout", timeout), zap.Int("partial_stdout_bytes", len(out.Stdout)))
		return out
	case ctx.Err() != nil:
		return r.failed(out, log, &types.AnalyzerExecutionError{AnalyzerID: spec.ID, Err: ctx.Err()})
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
		out.Status = entity.ExecFailed
		out.Reason = exitErr.Error()
		log.Warn("analyzer exited with failure", zap.Int("exit_code", out.ExitCode), zap.Duration("duration", out.Duration))
		return out
	default:
		return r.failed(out, log, &types.AnalyzerExecutionError{AnalyzerID: spec.ID, Err: err})
	}
}

func (r *ProcessRunner) failed(out entity.RawOutput, log *zap.Logger, err *types.AnalyzerExecutionError) entity.RawOutput {
	out.Status = entity.ExecFailed
	out.Reason = err.Err.Error()
	if out.Duration == 0 {
		out.Duration = time.Since(out.Started)
	}
	log.Warn("analyzer could not run", zap.Error(err))
	return out
}

func (r *ProcessRunner) command(spec entity.AnalyzerSpec) ([]string, error) {
	if len(spec.Command) == 0 || strings.TrimSpace(spec.Command[0]) == "" {
		return nil, errors.New("empty command")
	}
	if !spec.IsBuiltin() {
		return spec.Command, nil
	}
	if r.opts.Executable == "" {
		return nil, fmt.Errorf("%w: no executable to serve %s", types.ErrUnknownProbe, spec.Command[0])
	}
	probe := strings.TrimPrefix(spec.Command[0], entity.BuiltinPrefix)
	argv := []string{r.opts.Executable, "probe", probe}
	return append(argv, spec.Command[1:]...), nil
}

// environ builds the child environment; later keys override earlier ones.
func (r *ProcessRunner) environ(spec entity.AnalyzerSpec) []string {
	env := os.Environ()
	for _, extra := range []map[string]string{r.opts.Env, spec.Env} {
		keys := make([]string, 0, len(extra))
		for k := range extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			env = append(env, k+"="+extra[k])
		}
	}
	return env
}
