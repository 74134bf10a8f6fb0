package config

import (
	"github.com/diillson/aws-cost-report/internal/shared/types"
)

// Defaults applied when neither the file nor the command line sets a value.
const (
	DefaultOutputDir   = "cost_reports"
	DefaultConcurrency = 4
	DefaultTimeout     = "5m"
	DefaultTop         = 5
)

// DefaultAnalyzers is the registry used when no config file declares analyzers:
// the built-in read-only probes.
func DefaultAnalyzers() []types.AnalyzerConfig {
	return []types.AnalyzerConfig{
		{ID: "ec2-snapshots", Name: "EC2 Snapshots", Category: "Storage", Command: []string{"builtin:ec2-snapshots"}},
		{ID: "ebs-volumes", Name: "EBS Volumes", Category: "Storage", Command: []string{"builtin:ebs-volumes"}},
		{ID: "cloudwatch-logs", Name: "CloudWatch Logs", Category: "Storage", Command: []string{"builtin:cloudwatch-logs"}},
		{ID: "s3-buckets", Name: "S3 Buckets", Category: "Storage", Command: []string{"builtin:s3-buckets"}},
		{ID: "lambda-functions", Name: "Lambda Functions", Category: "Compute", Command: []string{"builtin:lambda-functions"}},
		{ID: "reserved-instances", Name: "Reserved Instances", Category: "Compute", Command: []string{"builtin:reserved-instances"}},
		{ID: "savings-plans", Name: "Compute Savings Plans", Category: "Compute", Command: []string{"builtin:savings-plans"}},
		{ID: "elastic-ips", Name: "Elastic IPs", Category: "Network", Command: []string{"builtin:elastic-ips"}},
		{ID: "load-balancers", Name: "Load Balancers", Category: "Network", Command: []string{"builtin:load-balancers"}},
		{ID: "nat-gateways", Name: "NAT Gateways", Category: "Network", Command: []string{"builtin:nat-gateways"}},
		{ID: "rds-instances", Name: "RDS Instances", Category: "Database", Command: []string{"builtin:rds-instances"}},
	}
}
