package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/hashicorp/go-multierror"
)

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Resolve merges the file configuration (may be nil), command line overrides and defaults
// into validated Settings. Every problem found is reported, wrapped in one ConfigurationError.
// knownProbes lists the names "builtin:" commands may use.
func Resolve(cfg *types.Config, args *types.CLIArgs, source string, knownProbes []string) (*types.Settings, error) {
	if cfg == nil {
		cfg = &types.Config{}
	}
	if args == nil {
		args = &types.CLIArgs{}
	}

	var errs *multierror.Error
	s := &types.Settings{
		OutputDir:        firstString(args.Dir, cfg.OutputDir, DefaultOutputDir),
		Concurrency:      firstInt(args.Concurrency, cfg.Concurrency, DefaultConcurrency),
		Top:              firstInt(args.Top, cfg.Top, DefaultTop),
		KeepRuns:         firstInt(args.KeepRuns, cfg.KeepRuns, 0),
		ReportTypes:      cfg.ReportTypes,
		DeriveYearlyCost: cfg.DeriveYearlyCost == nil || *cfg.DeriveYearlyCost,
		ResolveAccount:   args.ResolveAccount || cfg.ResolveAccount,
		Profile:          firstString(args.Profile, cfg.Profile, ""),
		Region:           firstString(args.Region, cfg.Region, ""),
		Source:           source,
	}
	if len(args.ReportType) > 0 {
		s.ReportTypes = args.ReportType
	}

	for name, v := range map[string]int{"concurrency": s.Concurrency, "top": s.Top, "keep_runs": s.KeepRuns} {
		if v < 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s must not be negative (got %d)", name, v))
		}
	}

	tieBreak, err := entity.ParseTieBreak(firstString(args.TieBreak, cfg.TieBreak, ""))
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	s.TieBreak = tieBreak

	timeout, err := parseTimeout(firstString(args.Timeout, cfg.Timeout, DefaultTimeout))
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("timeout: %w", err))
	}
	s.DefaultTimeout = timeout

	baseDir := "."
	if source != "" {
		baseDir = filepath.Dir(source)
	}

	analyzers := cfg.Analyzers
	if len(analyzers) == 0 {
		analyzers = DefaultAnalyzers()
	}

	seen := map[string]bool{}
	for i, ac := range analyzers {
		spec, err := toSpec(ac, baseDir, timeout, knownProbes)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("analyzers[%d] (%s): %w", i, ac.ID, err))
			continue
		}
		if seen[spec.ID] {
			errs = multierror.Append(errs, fmt.Errorf("analyzers[%d]: duplicate id %q", i, spec.ID))
			continue
		}
		seen[spec.ID] = true
		if ac.Disabled {
			continue
		}
		s.Analyzers = append(s.Analyzers, spec)
	}

	if len(args.Only) > 0 {
		var selected []entity.AnalyzerSpec
		for _, id := range args.Only {
			if !seen[id] {
				errs = multierror.Append(errs, fmt.Errorf("--only: unknown analyzer %q", id))
			}
		}
		for _, spec := range s.Analyzers {
			if slices.Contains(args.Only, spec.ID) {
				selected = append(selected, spec)
			}
		}
		s.Analyzers = selected
	}

	if errs.ErrorOrNil() == nil && len(s.Analyzers) == 0 {
		errs = multierror.Append(errs, types.ErrNoAnalyzers)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, &types.ConfigurationError{Source: source, Err: err}
	}
	return s, nil
}

func toSpec(ac types.AnalyzerConfig, baseDir string, defaultTimeout time.Duration, knownProbes []string) (entity.AnalyzerSpec, error) {
	var errs *multierror.Error

	id := strings.TrimSpace(ac.ID)
	if !idPattern.MatchString(id) {
		errs = multierror.Append(errs, fmt.Errorf("id %q must be lower case letters, digits, '-' or '_'", ac.ID))
	}

	category, err := entity.ParseCategory(ac.Category)
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	if len(ac.Command) == 0 || strings.TrimSpace(ac.Command[0]) == "" {
		errs = multierror.Append(errs, errors.New("command is required"))
	} else if strings.HasPrefix(ac.Command[0], entity.BuiltinPrefix) {
		probe := strings.TrimPrefix(ac.Command[0], entity.BuiltinPrefix)
		if !slices.Contains(knownProbes, probe) {
			errs = multierror.Append(errs, fmt.Errorf("%w %q", types.ErrUnknownProbe, probe))
		}
	}

	timeout := defaultTimeout
	if ac.Timeout != "" {
		if timeout, err = parseTimeout(ac.Timeout); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("timeout: %w", err))
		}
	}

	format := entity.OutputText
	switch strings.ToLower(strings.TrimSpace(ac.Format)) {
	case "", string(entity.OutputText):
	case string(entity.OutputJSON):
		format = entity.OutputJSON
	default:
		errs = multierror.Append(errs, fmt.Errorf("format %q must be text or json", ac.Format))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return entity.AnalyzerSpec{}, err
	}

	dir := ac.Dir
	if dir == "" {
		dir = baseDir
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(baseDir, dir)
	}

	name := strings.TrimSpace(ac.Name)
	if name == "" {
		name = id
	}

	env := make(map[string]string, len(ac.Env))
	for k, v := range ac.Env {
		env[k] = v
	}

	return entity.AnalyzerSpec{
		ID:       id,
		Name:     name,
		Category: category,
		Command:  append([]string(nil), ac.Command...),
		Timeout:  timeout,
		Format:   format,
		Dir:      dir,
		Env:      env,
	}, nil
}

func parseTimeout(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive (got %s)", s)
	}
	return d, nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
