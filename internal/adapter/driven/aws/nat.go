package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/shopspring/decimal"
)

const (
	// NATLookback is the traffic window, projected to a 30-day month.
	NATLookback = 7 * 24 * time.Hour
	// Gateways moving less than this per month are cheaper as a NAT instance or VPC endpoints.
	natLowUsageGB = 10
)

// NATAPI is the minimal interface for NAT Gateway operations.
type NATAPI interface {
	DescribeNatGateways(ctx context.Context, params *ec2.DescribeNatGatewaysInput, optFns ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error)
}

// NATProbe encontra NAT Gateways sem tráfego.
type NATProbe struct {
	client  NATAPI
	metrics *MetricsFetcher
	region  string
}

func NewNATProbe(client NATAPI, metrics *MetricsFetcher, region string) *NATProbe {
	return &NATProbe{client: client, metrics: metrics, region: region}
}

func (p *NATProbe) Name() string { return "nat-gateways" }

// Scan prices each available gateway by the hour plus the data it processed. A
// gateway with no bytes in either direction is an idle one and all of its cost is savings.
func (p *NATProbe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "NAT Gateways", Region: p.region, CurrentMonthlyCost: decimal.Zero}

	var gateways []ec2Types.NatGateway
	paginator := ec2.NewDescribeNatGatewaysPaginator(p.client, &ec2.DescribeNatGatewaysInput{
		Filter: []ec2Types.Filter{{Name: aws.String("state"), Values: []string{"available"}}},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe nat gateways: %w", err)
		}
		gateways = append(gateways, page.NatGateways...)
	}
	report.Scanned = len(gateways)
	if len(gateways) == 0 {
		return report, nil
	}

	ids := make([]string, 0, len(gateways))
	for _, gw := range gateways {
		ids = append(ids, aws.ToString(gw.NatGatewayId))
	}
	query := MetricQuery{Namespace: "AWS/NATGateway", Dimension: "NatGatewayId", Period: 24 * time.Hour, Lookback: NATLookback}
	out, err := p.metrics.Sum(ctx, withMetric(query, "BytesOutToDestination"), ids)
	if err != nil {
		return nil, err
	}
	in, err := p.metrics.Sum(ctx, withMetric(query, "BytesInFromSource"), ids)
	if err != nil {
		return nil, err
	}

	hourly := monthly(NATHourly)
	days := decimal.NewFromFloat(NATLookback.Hours() / 24)
	for _, gw := range gateways {
		id := aws.ToString(gw.NatGatewayId)
		bytes := out[id] + in[id]
		gbMonth := bytesToGB(int64(bytes)).Mul(decimal.NewFromInt(30)).Div(days)
		cost := hourly.Add(gbMonth.Mul(NATDataGB)).Round(2)
		report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)

		switch {
		case bytes == 0:
			report.Findings = append(report.Findings, Finding{
				ResourceID:     id,
				Description:    fmt.Sprintf("Delete idle NAT Gateway %s in %s (no traffic in %d days)", id, aws.ToString(gw.VpcId), int(NATLookback.Hours()/24)),
				MonthlySavings: cost,
			})
		case gbMonth.LessThan(decimal.NewFromInt(natLowUsageGB)):
			report.Notes = append(report.Notes, fmt.Sprintf("NAT Gateway %s processes only %s GB/month; a NAT instance or VPC endpoints may be cheaper",
				id, gbMonth.StringFixed(2)))
		}
	}
	return report, nil
}
