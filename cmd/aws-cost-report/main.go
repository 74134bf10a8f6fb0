package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/diillson/aws-cost-report/internal/adapter/driven/aws"
	"github.com/diillson/aws-cost-report/internal/adapter/driven/config"
	"github.com/diillson/aws-cost-report/internal/adapter/driven/export"
	"github.com/diillson/aws-cost-report/internal/adapter/driven/extract"
	"github.com/diillson/aws-cost-report/internal/adapter/driven/runner"
	"github.com/diillson/aws-cost-report/internal/adapter/driven/store"
	"github.com/diillson/aws-cost-report/internal/adapter/driving/cli"
	"github.com/diillson/aws-cost-report/internal/application/usecase"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/diillson/aws-cost-report/pkg/console"
	"github.com/diillson/aws-cost-report/pkg/version"
	"go.uber.org/zap"
)

func main() {
	consoleImpl := console.NewConsole()

	app := cli.NewCLIApp(cli.Dependencies{
		ConfigRepo:       config.NewConfigRepository(),
		Console:          consoleImpl,
		ProbeNames:       aws.ProbeNames(),
		NewReportUseCase: newReportUseCase(consoleImpl),
		RunProbe:         runProbe,
	})

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newReportUseCase monta os adaptadores a partir das configurações resolvidas.
func newReportUseCase(consoleImpl types.ConsoleInterface) cli.UseCaseFactory {
	return func(settings *types.Settings, logger *zap.Logger) (*usecase.ReportUseCase, error) {
		footer := "Generated by aws-cost-report " + version.FormatVersion()
		renderers, err := export.NewRenderers(settings.ReportTypes, footer)
		if err != nil {
			return nil, &types.ConfigurationError{Source: settings.Source, Err: err}
		}

		executable, err := os.Executable()
		if err != nil {
			logger.Warn("cannot locate own executable, built-in analyzers use argv[0]",
				zap.String("op", "main.newReportUseCase"), zap.Error(err))
			executable = os.Args[0]
		}

		// The SDK and most analyzer scripts read the profile and region from the environment.
		env := map[string]string{}
		if settings.Profile != "" {
			env["AWS_PROFILE"] = settings.Profile
		}
		if settings.Region != "" {
			env["AWS_REGION"] = settings.Region
		}

		processRunner := runner.NewProcessRunner(runner.Options{
			Concurrency:    settings.Concurrency,
			DefaultTimeout: settings.DefaultTimeout,
			Executable:     executable,
			Env:            env,
		}, logger)

		return usecase.NewReportUseCase(
			processRunner,
			extract.NewDispatcher(extract.Options{DeriveYearlyCost: settings.DeriveYearlyCost}),
			store.NewRunStore(settings.OutputDir, settings.KeepRuns, logger),
			renderers,
			aws.NewAWSRepository(aws.NewLoader(settings.Profile, settings.Region)),
			consoleImpl,
			logger,
		), nil
	}
}

func runProbe(ctx context.Context, name, profile, region string, w io.Writer) error {
	cfg, err := aws.NewLoader(profile, region).Config(ctx)
	if err != nil {
		return err
	}
	probe, err := aws.NewProbe(name, cfg)
	if err != nil {
		return err
	}
	report, err := probe.Scan(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", probe.Name(), err)
	}
	_, err = report.WriteTo(w)
	return err
}
