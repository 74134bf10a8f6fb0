package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	elbTypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2/types"
	"github.com/shopspring/decimal"
)

// ELBAPI is the minimal interface for ELBv2 operations.
type ELBAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elasticloadbalancingv2.DescribeLoadBalancersInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeLoadBalancersOutput, error)
	DescribeTargetGroups(ctx context.Context, params *elasticloadbalancingv2.DescribeTargetGroupsInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeTargetGroupsOutput, error)
	DescribeTargetHealth(ctx context.Context, params *elasticloadbalancingv2.DescribeTargetHealthInput, optFns ...func(*elasticloadbalancingv2.Options)) (*elasticloadbalancingv2.DescribeTargetHealthOutput, error)
}

// ELBProbe encontra load balancers sem nenhum target saudável.
type ELBProbe struct {
	client ELBAPI
	region string
}

func NewELBProbe(client ELBAPI, region string) *ELBProbe {
	return &ELBProbe{client: client, region: region}
}

func (p *ELBProbe) Name() string { return "load-balancers" }

func (p *ELBProbe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "Load Balancers", Region: p.region, CurrentMonthlyCost: decimal.Zero}

	var marker *string
	for {
		out, err := p.client.DescribeLoadBalancers(ctx, &elasticloadbalancingv2.DescribeLoadBalancersInput{Marker: marker})
		if err != nil {
			return nil, fmt.Errorf("describe load balancers: %w", err)
		}
		for _, lb := range out.LoadBalancers {
			report.Scanned++
			cost := monthly(lbHourly(lb.Type))
			report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)

			healthy, err := p.hasHealthyTargets(ctx, aws.ToString(lb.LoadBalancerArn))
			if err != nil {
				report.Notes = append(report.Notes, fmt.Sprintf("skipped %s: %v", aws.ToString(lb.LoadBalancerName), err))
				continue
			}
			if healthy {
				continue
			}
			name := aws.ToString(lb.LoadBalancerName)
			report.Findings = append(report.Findings, Finding{
				ResourceID:     aws.ToString(lb.LoadBalancerArn),
				Description:    fmt.Sprintf("Delete idle %s load balancer %s (no healthy targets)", lb.Type, name),
				MonthlySavings: cost,
			})
		}
		if out.NextMarker == nil {
			break
		}
		marker = out.NextMarker
	}
	return report, nil
}

func (p *ELBProbe) hasHealthyTargets(ctx context.Context, lbARN string) (bool, error) {
	tgs, err := p.client.DescribeTargetGroups(ctx, &elasticloadbalancingv2.DescribeTargetGroupsInput{
		LoadBalancerArn: aws.String(lbARN),
	})
	if err != nil {
		return false, fmt.Errorf("describe target groups: %w", err)
	}
	for _, tg := range tgs.TargetGroups {
		health, err := p.client.DescribeTargetHealth(ctx, &elasticloadbalancingv2.DescribeTargetHealthInput{
			TargetGroupArn: tg.TargetGroupArn,
		})
		if err != nil {
			return false, fmt.Errorf("describe target health: %w", err)
		}
		for _, d := range health.TargetHealthDescriptions {
			if d.TargetHealth != nil && d.TargetHealth.State == elbTypes.TargetHealthStateEnumHealthy {
				return true, nil
			}
		}
	}
	return false, nil
}

func lbHourly(t elbTypes.LoadBalancerTypeEnum) decimal.Decimal {
	switch t {
	case elbTypes.LoadBalancerTypeEnumNetwork:
		return NLBHourly
	case elbTypes.LoadBalancerTypeEnumGateway:
		return GWLBHourly
	default:
		return ALBHourly
	}
}
