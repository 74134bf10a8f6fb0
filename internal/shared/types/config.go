package types

// Config represents the application configuration that can be loaded from a file.
type Config struct {
	OutputDir        string           `json:"output_dir" yaml:"output_dir" toml:"output_dir"`
	Concurrency      int              `json:"concurrency" yaml:"concurrency" toml:"concurrency"`
	Timeout          string           `json:"timeout" yaml:"timeout" toml:"timeout"`
	Top              int              `json:"top" yaml:"top" toml:"top"`
	TieBreak         string           `json:"tie_break" yaml:"tie_break" toml:"tie_break"`
	ReportTypes      []string         `json:"report_types" yaml:"report_types" toml:"report_types"`
	KeepRuns         int              `json:"keep_runs" yaml:"keep_runs" toml:"keep_runs"`
	DeriveYearlyCost *bool            `json:"derive_yearly_cost" yaml:"derive_yearly_cost" toml:"derive_yearly_cost"`
	ResolveAccount   bool             `json:"resolve_account" yaml:"resolve_account" toml:"resolve_account"`
	Profile          string           `json:"profile" yaml:"profile" toml:"profile"`
	Region           string           `json:"region" yaml:"region" toml:"region"`
	Analyzers        []AnalyzerConfig `json:"analyzers" yaml:"analyzers" toml:"analyzers"`
}

// AnalyzerConfig é a forma crua de um analyzer no arquivo de configuração.
type AnalyzerConfig struct {
	ID       string            `json:"id" yaml:"id" toml:"id"`
	Name     string            `json:"name" yaml:"name" toml:"name"`
	Category string            `json:"category" yaml:"category" toml:"category"`
	Command  []string          `json:"command" yaml:"command" toml:"command"`
	Timeout  string            `json:"timeout" yaml:"timeout" toml:"timeout"`
	Format   string            `json:"format" yaml:"format" toml:"format"`
	Dir      string            `json:"dir" yaml:"dir" toml:"dir"`
	Env      map[string]string `json:"env" yaml:"env" toml:"env"`
	Disabled bool              `json:"disabled" yaml:"disabled" toml:"disabled"`
}
