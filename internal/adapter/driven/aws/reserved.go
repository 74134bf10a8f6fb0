package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/shopspring/decimal"
)

// Commitment thresholds on yearly on-demand spend.
var (
	savingsPlanMinYearly   = decimal.NewFromInt(1_000)
	savingsPlan3YearYearly = decimal.NewFromInt(10_000)
)

// FleetAPI is the minimal interface for reading running instances and their reservations.
type FleetAPI interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeReservedInstances(ctx context.Context, params *ec2.DescribeReservedInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeReservedInstancesOutput, error)
}

// fleetLine is one instance type of the running on-demand fleet.
type fleetLine struct {
	instanceType string
	running      int
	reserved     int
	hourly       decimal.Decimal
}

func (l fleetLine) uncovered() int { return max(0, l.running-l.reserved) }

// loadFleet groups running on-demand instances by type, with the active reservations of each.
// Spot instances are left out. Types without a price come back in unpriced.
func loadFleet(ctx context.Context, client FleetAPI) (lines []fleetLine, scanned int, unpriced []string, err error) {
	running := map[string]int{}
	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{
		Filters: []ec2Types.Filter{{Name: aws.String("instance-state-name"), Values: []string{"running"}}},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("describe instances: %w", err)
		}
		for _, res := range page.Reservations {
			for _, inst := range res.Instances {
				scanned++
				if inst.InstanceLifecycle == ec2Types.InstanceLifecycleTypeSpot {
					continue
				}
				running[string(inst.InstanceType)]++
			}
		}
	}

	ris, err := client.DescribeReservedInstances(ctx, &ec2.DescribeReservedInstancesInput{
		Filters: []ec2Types.Filter{{Name: aws.String("state"), Values: []string{"active"}}},
	})
	if err != nil {
		return nil, 0, nil, fmt.Errorf("describe reserved instances: %w", err)
	}
	reserved := map[string]int{}
	for _, ri := range ris.ReservedInstances {
		reserved[string(ri.InstanceType)] += int(aws.ToInt32(ri.InstanceCount))
	}

	names := make([]string, 0, len(running))
	for t := range running {
		names = append(names, t)
	}
	sort.Strings(names)
	for _, t := range names {
		hourly, ok := EC2Hourly(t)
		if !ok {
			unpriced = append(unpriced, fmt.Sprintf("%s (%d running)", t, running[t]))
			continue
		}
		lines = append(lines, fleetLine{instanceType: t, running: running[t], reserved: reserved[t], hourly: hourly})
	}
	return lines, scanned, unpriced, nil
}

func unpricedNote(unpriced []string) string {
	return fmt.Sprintf("no price for instance type(s) %v; not included", unpriced)
}

// ReservedInstanceProbe recomenda RIs de 1 ano para instâncias on-demand sem cobertura.
type ReservedInstanceProbe struct {
	client FleetAPI
	region string
}

func NewReservedInstanceProbe(client FleetAPI, region string) *ReservedInstanceProbe {
	return &ReservedInstanceProbe{client: client, region: region}
}

func (p *ReservedInstanceProbe) Name() string { return "reserved-instances" }

// Scan assumes running instances run all month.
func (p *ReservedInstanceProbe) Scan(ctx context.Context) (*Report, error) {
	lines, scanned, unpriced, err := loadFleet(ctx, p.client)
	if err != nil {
		return nil, err
	}
	report := &Report{Title: "Reserved Instances", Region: p.region, Scanned: scanned, CurrentMonthlyCost: decimal.Zero}

	for _, l := range lines {
		each := monthly(l.hourly)
		report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(each.Mul(decimal.NewFromInt(int64(l.running))))

		n := l.uncovered()
		if n == 0 {
			continue
		}
		report.Findings = append(report.Findings, Finding{
			ResourceID:     l.instanceType,
			Description:    fmt.Sprintf("Buy %d 1-year reserved instance(s) for %s (%d running, %d reserved)", n, l.instanceType, l.running, l.reserved),
			MonthlySavings: each.Mul(decimal.NewFromInt(int64(n))).Mul(ReservedDiscount).Round(2),
		})
	}
	if len(unpriced) > 0 {
		report.Notes = append(report.Notes, unpricedNote(unpriced))
	}
	if len(report.Findings) > 0 {
		report.Notes = append(report.Notes, "A 3-year term raises the discount from 35% to 50%.")
	}
	return report, nil
}

// SavingsPlanProbe estima um Compute Savings Plan para o uso on-demand sem RI.
type SavingsPlanProbe struct {
	client FleetAPI
	region string
}

func NewSavingsPlanProbe(client FleetAPI, region string) *SavingsPlanProbe {
	return &SavingsPlanProbe{client: client, region: region}
}

func (p *SavingsPlanProbe) Name() string { return "savings-plans" }

// Scan commits to the uncovered on-demand spend: a 3-year plan above $10,000 a year,
// a 1-year plan above $1,000, nothing below.
func (p *SavingsPlanProbe) Scan(ctx context.Context) (*Report, error) {
	lines, scanned, unpriced, err := loadFleet(ctx, p.client)
	if err != nil {
		return nil, err
	}
	report := &Report{Title: "Compute Savings Plans", Region: p.region, Scanned: scanned, CurrentMonthlyCost: decimal.Zero}

	onDemand := decimal.Zero
	for _, l := range lines {
		each := monthly(l.hourly)
		report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(each.Mul(decimal.NewFromInt(int64(l.running))))
		onDemand = onDemand.Add(each.Mul(decimal.NewFromInt(int64(l.uncovered()))))
	}
	if len(unpriced) > 0 {
		report.Notes = append(report.Notes, unpricedNote(unpriced))
	}

	yearly := onDemand.Mul(MonthsPerYear)
	term, discount := 0, decimal.Zero
	switch {
	case yearly.GreaterThan(savingsPlan3YearYearly):
		term, discount = 3, SavingsPlan3YearDiscount
	case yearly.GreaterThan(savingsPlanMinYearly):
		term, discount = 1, SavingsPlan1YearDiscount
	}
	if term == 0 {
		if onDemand.IsPositive() {
			report.Notes = append(report.Notes, "On-demand spend is too small for a Savings Plan commitment.")
		}
		return report, nil
	}

	report.Findings = append(report.Findings, Finding{
		ResourceID: fmt.Sprintf("compute-savings-plan-%dy", term),
		Description: fmt.Sprintf("Commit to a %d-year Compute Savings Plan covering %s USD/month of on-demand EC2",
			term, onDemand.StringFixed(2)),
		MonthlySavings: onDemand.Mul(discount).Round(2),
	})
	report.Notes = append(report.Notes, "Covers the same usage as reserved-instances; buy one or the other.")
	return report, nil
}
