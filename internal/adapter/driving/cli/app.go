package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/diillson/aws-cost-report/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-report/internal/application/usecase"
	"github.com/diillson/aws-cost-report/internal/domain/repository"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/diillson/aws-cost-report/pkg/logging"
	"github.com/diillson/aws-cost-report/pkg/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// UseCaseFactory builds the report use case once the settings are known.
type UseCaseFactory func(settings *types.Settings, logger *zap.Logger) (*usecase.ReportUseCase, error)

// ProbeFunc runs one built-in probe and writes its report to w.
type ProbeFunc func(ctx context.Context, name, profile, region string, w io.Writer) error

// Dependencies são os adaptadores que o main injeta na CLI.
type Dependencies struct {
	ConfigRepo       repository.ConfigRepository
	Console          types.ConsoleInterface
	ProbeNames       []string
	NewReportUseCase UseCaseFactory
	RunProbe         ProbeFunc
}

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd *cobra.Command
	deps    Dependencies
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(deps Dependencies) *CLIApp {
	app := &CLIApp{deps: deps}

	rootCmd := &cobra.Command{
		Use:           "aws-cost-report",
		Short:         "Run cost-savings analyzers and publish one reconciled report",
		Long:          "Runs every configured analyzer, reconciles their savings figures and publishes\na text summary, a JSON document and an HTML dashboard into a timestamped run directory.",
		Version:       version.FormatVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          app.runCommand,
	}
	rootCmd.SetVersionTemplate(`{{printf "aws-cost-report version: %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().String("profile", "", "AWS profile used by the built-in analyzers")
	rootCmd.PersistentFlags().String("region", "", "AWS region used by the built-in analyzers")
	rootCmd.PersistentFlags().String("log-level", logging.DefaultLevel, "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", logging.DefaultFormat, "Log format: console or json")

	rootCmd.Flags().StringP("dir", "d", "", "Directory for run directories (default: cost_reports)")
	rootCmd.Flags().Int("concurrency", 0, "Analyzers run in parallel (default 4)")
	rootCmd.Flags().String("timeout", "", "Default time budget per analyzer, e.g. 90s or 5m (default 5m)")
	rootCmd.Flags().Int("top", 0, "Recommendations highlighted in the report (default 5)")
	rootCmd.Flags().String("tie-break", "", "Order of recommendations with equal savings: name or registry (default name)")
	rootCmd.Flags().StringSliceP("report-type", "y", nil, "Report types: text, json, html, pdf, csv (default text,json,html)")
	rootCmd.Flags().Int("keep-runs", 0, "Keep only the newest N run directories (0 keeps all)")
	rootCmd.Flags().StringSlice("only", nil, "Run only these analyzer ids (comma-separated)")
	rootCmd.Flags().Bool("resolve-account", false, "Look up the AWS account id for the report header")
	rootCmd.Flags().Bool("no-banner", false, "Do not print the welcome banner")

	rootCmd.AddCommand(app.analyzersCommand(), app.probeCommand(), app.versionCommand())

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func parseArgs(cmd *cobra.Command) *types.CLIArgs {
	flags := cmd.Flags()
	args := &types.CLIArgs{}
	args.ConfigFile, _ = flags.GetString("config-file")
	args.Profile, _ = flags.GetString("profile")
	args.Region, _ = flags.GetString("region")
	args.LogLevel, _ = flags.GetString("log-level")
	args.LogFormat, _ = flags.GetString("log-format")

	// Flags locais só existem no comando raiz.
	if flags.Lookup("dir") != nil {
		args.Dir, _ = flags.GetString("dir")
		args.Concurrency, _ = flags.GetInt("concurrency")
		args.Timeout, _ = flags.GetString("timeout")
		args.Top, _ = flags.GetInt("top")
		args.TieBreak, _ = flags.GetString("tie-break")
		args.ReportType, _ = flags.GetStringSlice("report-type")
		args.KeepRuns, _ = flags.GetInt("keep-runs")
		args.Only, _ = flags.GetStringSlice("only")
		args.ResolveAccount, _ = flags.GetBool("resolve-account")
		args.NoBanner, _ = flags.GetBool("no-banner")
	}
	return args
}

// loadSettings finds and loads the configuration file, then resolves it with the flags.
func (app *CLIApp) loadSettings(args *types.CLIArgs) (*types.Settings, error) {
	path := args.ConfigFile
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, &types.ConfigurationError{Err: fmt.Errorf("working directory: %w", err)}
		}
		path, _ = app.deps.ConfigRepo.FindConfigFile(cwd)
	}

	var cfg *types.Config
	if path != "" {
		var err error
		if cfg, err = app.deps.ConfigRepo.LoadConfigFile(path); err != nil {
			return nil, err
		}
	}
	return config.Resolve(cfg, args, path, app.deps.ProbeNames)
}

func newLogger(args *types.CLIArgs) (*zap.Logger, error) {
	logger, err := logging.New(args.LogLevel, args.LogFormat)
	if err != nil {
		return nil, &types.ConfigurationError{Source: "flags", Err: err}
	}
	return logger, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, _ []string) error {
	args := parseArgs(cmd)
	logger, err := newLogger(args)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !args.NoBanner {
		displayWelcomeBanner(cmd.OutOrStdout())
	}

	settings, err := app.loadSettings(args)
	if err != nil {
		return err
	}
	if settings.Source != "" {
		app.deps.Console.LogInfo("Using configuration %s", settings.Source)
	}

	uc, err := app.deps.NewReportUseCase(settings, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outcome, err := uc.RunReport(ctx, settings)
	if err != nil {
		return err
	}
	uc.PrintSummary(outcome)
	return nil
}

func (app *CLIApp) analyzersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyzers",
		Short: "List the configured analyzers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := app.loadSettings(parseArgs(cmd))
			if err != nil {
				return err
			}
			table := app.deps.Console.CreateTable()
			for _, col := range []string{"ID", "Name", "Category", "Command", "Timeout", "Format"} {
				table.AddColumn(col)
			}
			for _, a := range settings.Analyzers {
				table.AddRow(a.ID, a.Name, string(a.Category), strings.Join(a.Command, " "), a.Timeout, string(a.Format))
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}

func (app *CLIApp) probeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "probe <name>",
		Short:     "Run one built-in analyzer and print its report",
		ValidArgs: app.deps.ProbeNames,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, names []string) error {
			args := parseArgs(cmd)
			logger, err := newLogger(args)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			logger.Debug("probe started", zap.String("op", "cli.probe"), zap.String("probe", names[0]))
			return app.deps.RunProbe(cmd.Context(), names[0], args.Profile, args.Region, cmd.OutOrStdout())
		},
	}
}

func (app *CLIApp) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "aws-cost-report version: %s\n", version.FormatVersion())
		},
	}
}
