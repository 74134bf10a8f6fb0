package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/shopspring/decimal"
)

// RDSAPI is the minimal interface for RDS operations.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// RDSProbe estima a economia de instâncias reservadas de 1 ano.
type RDSProbe struct {
	client RDSAPI
	region string
}

func NewRDSProbe(client RDSAPI, region string) *RDSProbe {
	return &RDSProbe{client: client, region: region}
}

func (p *RDSProbe) Name() string { return "rds-instances" }

func (p *RDSProbe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "RDS Instances", Region: p.region, CurrentMonthlyCost: decimal.Zero}

	paginator := rds.NewDescribeDBInstancesPaginator(p.client, &rds.DescribeDBInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe db instances: %w", err)
		}
		for _, db := range page.DBInstances {
			report.Scanned++
			id := aws.ToString(db.DBInstanceIdentifier)
			class := aws.ToString(db.DBInstanceClass)
			hourly, ok := RDSHourly(class)
			if !ok {
				report.Notes = append(report.Notes, fmt.Sprintf("no price for %s (%s); not included", id, class))
				continue
			}
			cost := monthly(hourly)
			if aws.ToBool(db.MultiAZ) {
				cost = cost.Mul(decimal.NewFromInt(2))
			}
			report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)

			if aws.ToString(db.DBInstanceStatus) != "available" {
				continue
			}
			report.Findings = append(report.Findings, Finding{
				ResourceID:     id,
				Description:    fmt.Sprintf("Buy a 1-year reserved instance for %s (%s, %s)", id, class, aws.ToString(db.Engine)),
				MonthlySavings: cost.Mul(ReservedDiscount).Round(2),
			})
		}
	}
	return report, nil
}
