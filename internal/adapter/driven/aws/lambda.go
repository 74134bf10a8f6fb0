package aws

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	lambdaTypes "github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/shopspring/decimal"
)

const (
	// LambdaLookback is the usage window a function's cost is estimated from.
	LambdaLookback = 30 * 24 * time.Hour
	// A timeout this many times the average duration marks an over-provisioned function.
	lambdaOverprovisionFactor = 3
)

// LambdaAPI is the minimal interface for Lambda operations.
type LambdaAPI interface {
	ListFunctions(ctx context.Context, params *lambda.ListFunctionsInput, optFns ...func(*lambda.Options)) (*lambda.ListFunctionsOutput, error)
}

// LambdaProbe estima o custo das funções a partir das métricas de uso.
type LambdaProbe struct {
	client  LambdaAPI
	metrics *MetricsFetcher
	region  string
}

func NewLambdaProbe(client LambdaAPI, metrics *MetricsFetcher, region string) *LambdaProbe {
	return &LambdaProbe{client: client, metrics: metrics, region: region}
}

func (p *LambdaProbe) Name() string { return "lambda-functions" }

// Scan prices the last 30 days of each function. Functions whose timeout is far above
// their average duration are flagged for right-sizing at 5% of their cost.
func (p *LambdaProbe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "Lambda Functions", Region: p.region, CurrentMonthlyCost: decimal.Zero}

	functions, err := p.listFunctions(ctx)
	if err != nil {
		return nil, err
	}
	report.Scanned = len(functions)
	if len(functions) == 0 {
		return report, nil
	}

	names := make([]string, 0, len(functions))
	for _, fn := range functions {
		names = append(names, aws.ToString(fn.FunctionName))
	}
	query := MetricQuery{Namespace: "AWS/Lambda", Dimension: "FunctionName", Period: 24 * time.Hour, Lookback: LambdaLookback}

	invocations, err := p.metrics.Sum(ctx, withMetric(query, "Invocations"), names)
	if err != nil {
		return nil, err
	}
	durations, err := p.metrics.Average(ctx, withMetric(query, "Duration"), names)
	if err != nil {
		return nil, err
	}

	var unused []string
	for _, fn := range functions {
		name := aws.ToString(fn.FunctionName)
		calls := invocations[name]
		if calls <= 0 {
			unused = append(unused, name)
			continue
		}

		avgMs := durations[name]
		cost := lambdaMonthly(aws.ToInt32(fn.MemorySize), avgMs, calls)
		report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)

		timeoutMs := float64(aws.ToInt32(fn.Timeout)) * 1000
		if avgMs <= 0 || timeoutMs <= avgMs*lambdaOverprovisionFactor {
			continue
		}
		savings := cost.Mul(LambdaRightSizeSavings).Round(2)
		if savings.IsZero() {
			continue
		}
		report.Findings = append(report.Findings, Finding{
			ResourceID: name,
			Description: fmt.Sprintf("Right-size function %s (%d MB, timeout %ds, average duration %.2fs)",
				name, aws.ToInt32(fn.MemorySize), aws.ToInt32(fn.Timeout), avgMs/1000),
			MonthlySavings: savings,
		})
	}

	if len(unused) > 0 {
		sort.Strings(unused)
		report.Notes = append(report.Notes, fmt.Sprintf("%d function(s) had no invocations in the last %d days and cost nothing; review for deletion: %s",
			len(unused), int(LambdaLookback.Hours()/24), strings.Join(unused, ", ")))
	}
	report.Notes = append(report.Notes, "Estimates ignore the Lambda free tier.")
	return report, nil
}

func (p *LambdaProbe) listFunctions(ctx context.Context) ([]lambdaTypes.FunctionConfiguration, error) {
	var functions []lambdaTypes.FunctionConfiguration
	paginator := lambda.NewListFunctionsPaginator(p.client, &lambda.ListFunctionsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list functions: %w", err)
		}
		functions = append(functions, page.Functions...)
	}
	return functions, nil
}

func withMetric(q MetricQuery, name string) MetricQuery {
	q.MetricName = name
	return q
}
