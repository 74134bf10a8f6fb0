package types

// CLIArgs represents the command-line arguments.
type CLIArgs struct {
	ConfigFile     string
	Dir            string
	Concurrency    int
	Timeout        string
	Top            int
	TieBreak       string
	ReportType     []string
	KeepRuns       int
	Only           []string
	Profile        string
	Region         string
	ResolveAccount bool
	NoBanner       bool
	LogLevel       string
	LogFormat      string
}
