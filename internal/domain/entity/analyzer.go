package entity

import (
	"fmt"
	"strings"
	"time"
)

// Category agrupa analyzers por área de custo. A lista é fixa.
type Category string

const (
	CategoryStorage  Category = "Storage"
	CategoryNetwork  Category = "Network"
	CategoryCompute  Category = "Compute"
	CategoryDatabase Category = "Database"
)

// Categories returns every category in presentation order.
func Categories() []Category {
	return []Category{CategoryStorage, CategoryNetwork, CategoryCompute, CategoryDatabase}
}

// ParseCategory accepts any casing of a known category name.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (expected one of Storage, Network, Compute, Database)", s)
}

// OutputFormat is the shape of the report an analyzer prints on stdout.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// BuiltinPrefix marks a command served by this binary's own probe subcommand.
const BuiltinPrefix = "builtin:"

// AnalyzerSpec identifica um analyzer plugável. Imutável depois do carregamento da configuração.
type AnalyzerSpec struct {
	ID       string
	Name     string
	Category Category
	Command  []string
	Timeout  time.Duration
	Format   OutputFormat
	Dir      string
	Env      map[string]string
}

// IsBuiltin reports whether the command points at a built-in probe.
func (s AnalyzerSpec) IsBuiltin() bool {
	return len(s.Command) > 0 && strings.HasPrefix(s.Command[0], BuiltinPrefix)
}

// RawReportName is the artifact name of the unmodified analyzer output inside a run directory.
func (s AnalyzerSpec) RawReportName() string {
	return s.ID + "_report.txt"
}
