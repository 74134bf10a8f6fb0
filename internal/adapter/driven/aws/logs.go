package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/shopspring/decimal"
)

// SuggestedRetentionDays is the retention proposed for groups that never expire.
const SuggestedRetentionDays = 30

// LogsAPI is the minimal interface for CloudWatch Logs operations.
type LogsAPI interface {
	DescribeLogGroups(ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
}

// LogsProbe encontra log groups sem retenção configurada.
type LogsProbe struct {
	client LogsAPI
	region string
}

func NewLogsProbe(client LogsAPI, region string) *LogsProbe {
	return &LogsProbe{client: client, region: region}
}

func (p *LogsProbe) Name() string { return "cloudwatch-logs" }

// Scan assumes stored data is spread evenly over a year, so a 30 day
// retention keeps 30/365 of it.
func (p *LogsProbe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "CloudWatch Logs", Region: p.region, CurrentMonthlyCost: decimal.Zero}
	kept := decimal.NewFromInt(SuggestedRetentionDays).Div(decimal.NewFromInt(365))
	dropped := decimal.NewFromInt(1).Sub(kept)

	paginator := cloudwatchlogs.NewDescribeLogGroupsPaginator(p.client, &cloudwatchlogs.DescribeLogGroupsInput{
		Limit: aws.Int32(50),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe log groups: %w", err)
		}
		for _, lg := range page.LogGroups {
			report.Scanned++
			gb := bytesToGB(aws.ToInt64(lg.StoredBytes))
			cost := gb.Mul(LogsGBMonth).Round(2)
			report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)

			if lg.RetentionInDays != nil {
				continue
			}
			savings := cost.Mul(dropped).Round(2)
			if savings.IsZero() {
				continue
			}
			name := aws.ToString(lg.LogGroupName)
			report.Findings = append(report.Findings, Finding{
				ResourceID:     name,
				Description:    fmt.Sprintf("Set %d-day retention on log group %s (%s GB, never expires)", SuggestedRetentionDays, name, gb.StringFixed(2)),
				MonthlySavings: savings,
			})
		}
	}
	return report, nil
}
