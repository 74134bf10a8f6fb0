package aws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/shopspring/decimal"
)

// S3API is the minimal interface for S3 operations.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	GetBucketLifecycleConfiguration(ctx context.Context, params *s3.GetBucketLifecycleConfigurationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLifecycleConfigurationOutput, error)
}

// S3Probe encontra buckets em Standard sem nenhuma regra de lifecycle.
type S3Probe struct {
	client  S3API
	metrics *MetricsFetcher
	region  string
}

func NewS3Probe(client S3API, metrics *MetricsFetcher, region string) *S3Probe {
	return &S3Probe{client: client, metrics: metrics, region: region}
}

func (p *S3Probe) Name() string { return "s3-buckets" }

// Scan sizes the Standard storage of each bucket in the region from the daily
// BucketSizeBytes metric. Buckets without lifecycle rules are priced as if moved to
// Glacier Instant Retrieval.
func (p *S3Probe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "S3 Buckets", Region: p.region, CurrentMonthlyCost: decimal.Zero}

	out, err := p.client.ListBuckets(ctx, &s3.ListBucketsInput{BucketRegion: aws.String(p.region)})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	report.Scanned = len(names)

	sizes, err := p.metrics.Latest(ctx, MetricQuery{
		Namespace:  "AWS/S3",
		MetricName: "BucketSizeBytes",
		Dimension:  "BucketName",
		Fixed:      map[string]string{"StorageType": "StandardStorage"},
		Period:     24 * time.Hour,
		Lookback:   3 * 24 * time.Hour,
	}, names)
	if err != nil {
		return nil, err
	}

	perGB := S3StandardGBMonth.Sub(S3GlacierIRGBMonth)
	for _, name := range names {
		bytes, ok := sizes[name]
		if !ok || bytes <= 0 {
			continue
		}
		gb := bytesToGB(int64(bytes))
		report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(gb.Mul(S3StandardGBMonth).Round(2))

		hasRules, err := p.hasLifecycle(ctx, name)
		if err != nil {
			report.Notes = append(report.Notes, fmt.Sprintf("bucket %s skipped: %v", name, err))
			continue
		}
		if hasRules {
			continue
		}
		savings := gb.Mul(perGB).Round(2)
		if savings.IsZero() {
			continue
		}
		report.Findings = append(report.Findings, Finding{
			ResourceID:     name,
			Description:    fmt.Sprintf("Add a lifecycle rule moving bucket %s (%s GB Standard) to Glacier Instant Retrieval", name, gb.StringFixed(2)),
			MonthlySavings: savings,
		})
	}
	return report, nil
}

func (p *S3Probe) hasLifecycle(ctx context.Context, bucket string) (bool, error) {
	out, err := p.client.GetBucketLifecycleConfiguration(ctx, &s3.GetBucketLifecycleConfigurationInput{Bucket: aws.String(bucket)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchLifecycleConfiguration" {
			return false, nil
		}
		return false, fmt.Errorf("get lifecycle configuration: %w", err)
	}
	return len(out.Rules) > 0, nil
}
