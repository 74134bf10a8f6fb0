package types

import (
	"errors"
	"fmt"
)

var (
	ErrNoAnalyzers      = errors.New("no analyzers configured")
	ErrUnknownProbe     = errors.New("unknown built-in analyzer")
	ErrUnsupportedInput = errors.New("unsupported config file format")
)

// AnalyzerExecutionError describes a process that failed to start or ran over its time budget.
// It never aborts a run; its message becomes the result's reason.
type AnalyzerExecutionError struct {
	AnalyzerID string
	TimedOut   bool
	Err        error
}

func (e *AnalyzerExecutionError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("analyzer %s timed out: %v", e.AnalyzerID, e.Err)
	}
	return fmt.Sprintf("analyzer %s failed: %v", e.AnalyzerID, e.Err)
}

func (e *AnalyzerExecutionError) Unwrap() error { return e.Err }

// ExtractionAnomaly is a value that could not be parsed. It degrades to a zero and a diagnostic.
type ExtractionAnomaly struct {
	Field string
	Token string
	Err   error
}

func (e *ExtractionAnomaly) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: malformed amount %q: %v", e.Field, e.Token, e.Err)
}

func (e *ExtractionAnomaly) Unwrap() error { return e.Err }

// RunStoreError é fatal: nenhum relatório é confiável se a escrita falhou.
type RunStoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *RunStoreError) Error() string {
	return fmt.Sprintf("run store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RunStoreError) Unwrap() error { return e.Err }

// ConfigurationError é fatal na inicialização, antes de qualquer analyzer rodar.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration %s: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IsFatal reports whether err must stop the orchestration with a nonzero exit.
func IsFatal(err error) bool {
	var storeErr *RunStoreError
	var cfgErr *ConfigurationError
	return errors.As(err, &storeErr) || errors.As(err, &cfgErr)
}
