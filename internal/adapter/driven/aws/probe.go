package aws

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/diillson/aws-cost-report/internal/shared/types"
	"github.com/diillson/aws-cost-report/pkg/money"
	"github.com/shopspring/decimal"
)

// Probe é um analyzer embutido, somente leitura.
type Probe interface {
	Name() string
	Scan(ctx context.Context) (*Report, error)
}

// Finding is one savings opportunity on one resource.
type Finding struct {
	ResourceID     string
	Description    string
	MonthlySavings decimal.Decimal
}

// YearlySavings is the finding's own annualised figure.
func (f Finding) YearlySavings() decimal.Decimal {
	return f.MonthlySavings.Mul(MonthsPerYear)
}

// Report is what a probe found, printed in the analyzer text format.
type Report struct {
	Title              string
	Region             string
	Scanned            int
	CurrentMonthlyCost decimal.Decimal
	Findings           []Finding
	Notes              []string
}

// MonthlySavings sums the findings.
func (r *Report) MonthlySavings() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(r.Findings))
	for i, f := range r.Findings {
		amounts[i] = f.MonthlySavings
	}
	return money.Sum(amounts...)
}

// YearlySavings sums the findings' yearly figures.
func (r *Report) YearlySavings() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(r.Findings))
	for i, f := range r.Findings {
		amounts[i] = f.YearlySavings()
	}
	return money.Sum(amounts...)
}

// WriteTo prints the report with the anchor lines the extractor reads.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var b bytes.Buffer
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s Cost Analysis\n", r.Title)
	fmt.Fprintf(&b, "Region: %s | Resources scanned: %d\n", r.Region, r.Scanned)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Current Cost: %s\n", money.Format(r.CurrentMonthlyCost))
	fmt.Fprintf(&b, "Monthly Savings: %s\n", money.Format(r.MonthlySavings()))
	fmt.Fprintf(&b, "Yearly Savings: %s\n", money.Format(r.YearlySavings()))
	fmt.Fprintln(&b)

	if len(r.Findings) == 0 {
		fmt.Fprintln(&b, "No savings opportunities found.")
	} else {
		fmt.Fprintln(&b, "RECOMMENDATIONS:")
		for _, f := range r.Findings {
			fmt.Fprintf(&b, "- %s: saves %s/month (%s/year)\n",
				f.Description, money.Format(f.MonthlySavings), money.Format(f.YearlySavings()))
		}
	}
	for _, n := range r.Notes {
		fmt.Fprintf(&b, "\nNote: %s\n", n)
	}

	n, err := w.Write(b.Bytes())
	return int64(n), err
}

type factory func(cfg aws.Config) Probe

var probes = map[string]factory{
	"elastic-ips": func(cfg aws.Config) Probe {
		return NewEIPProbe(ec2.NewFromConfig(cfg), cfg.Region)
	},
	"ebs-volumes": func(cfg aws.Config) Probe {
		return NewEBSProbe(ec2.NewFromConfig(cfg), cfg.Region)
	},
	"ec2-snapshots": func(cfg aws.Config) Probe {
		return NewSnapshotProbe(ec2.NewFromConfig(cfg), cfg.Region, time.Now)
	},
	"load-balancers": func(cfg aws.Config) Probe {
		return NewELBProbe(elasticloadbalancingv2.NewFromConfig(cfg), cfg.Region)
	},
	"cloudwatch-logs": func(cfg aws.Config) Probe {
		return NewLogsProbe(cloudwatchlogs.NewFromConfig(cfg), cfg.Region)
	},
	"rds-instances": func(cfg aws.Config) Probe {
		return NewRDSProbe(rds.NewFromConfig(cfg), cfg.Region)
	},
	"lambda-functions": func(cfg aws.Config) Probe {
		return NewLambdaProbe(lambda.NewFromConfig(cfg), NewMetricsFetcher(cloudwatch.NewFromConfig(cfg), time.Now), cfg.Region)
	},
	"s3-buckets": func(cfg aws.Config) Probe {
		return NewS3Probe(s3.NewFromConfig(cfg), NewMetricsFetcher(cloudwatch.NewFromConfig(cfg), time.Now), cfg.Region)
	},
	"nat-gateways": func(cfg aws.Config) Probe {
		return NewNATProbe(ec2.NewFromConfig(cfg), NewMetricsFetcher(cloudwatch.NewFromConfig(cfg), time.Now), cfg.Region)
	},
	"reserved-instances": func(cfg aws.Config) Probe {
		return NewReservedInstanceProbe(ec2.NewFromConfig(cfg), cfg.Region)
	},
	"savings-plans": func(cfg aws.Config) Probe {
		return NewSavingsPlanProbe(ec2.NewFromConfig(cfg), cfg.Region)
	},
}

// ProbeNames lists the built-in probes, sorted.
func ProbeNames() []string {
	names := make([]string, 0, len(probes))
	for name := range probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProbe builds the named probe on real AWS clients.
func NewProbe(name string, cfg aws.Config) (Probe, error) {
	f, ok := probes[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", types.ErrUnknownProbe, name, strings.Join(ProbeNames(), ", "))
	}
	return f(cfg), nil
}
