package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// maxMetricQueries is the GetMetricData limit per call.
const maxMetricQueries = 500

// CloudWatchAPI is the minimal interface for CloudWatch metric reads.
type CloudWatchAPI interface {
	GetMetricData(ctx context.Context, params *cloudwatch.GetMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricDataOutput, error)
}

// MetricQuery descreve uma métrica por recurso.
type MetricQuery struct {
	Namespace  string
	MetricName string
	// Dimension is the per-resource dimension; its value is each id.
	Dimension string
	// Fixed dimensions shared by every id, e.g. StorageType for S3.
	Fixed    map[string]string
	Stat     string
	Period   time.Duration
	Lookback time.Duration
}

// MetricsFetcher reads CloudWatch metrics in batches.
type MetricsFetcher struct {
	client CloudWatchAPI
	now    func() time.Time
}

func NewMetricsFetcher(client CloudWatchAPI, now func() time.Time) *MetricsFetcher {
	if now == nil {
		now = time.Now
	}
	return &MetricsFetcher{client: client, now: now}
}

// Sum returns the total of the metric over the lookback window, per id.
func (f *MetricsFetcher) Sum(ctx context.Context, q MetricQuery, ids []string) (map[string]float64, error) {
	q.Stat = "Sum"
	return f.fetch(ctx, q, ids, func(values []float64) float64 {
		var total float64
		for _, v := range values {
			total += v
		}
		return total
	})
}

// Average returns the mean of the datapoints, per id.
func (f *MetricsFetcher) Average(ctx context.Context, q MetricQuery, ids []string) (map[string]float64, error) {
	q.Stat = "Average"
	return f.fetch(ctx, q, ids, func(values []float64) float64 {
		var total float64
		for _, v := range values {
			total += v
		}
		return total / float64(len(values))
	})
}

// Latest returns the most recent datapoint, per id. CloudWatch returns newest first.
func (f *MetricsFetcher) Latest(ctx context.Context, q MetricQuery, ids []string) (map[string]float64, error) {
	if q.Stat == "" {
		q.Stat = "Average"
	}
	return f.fetch(ctx, q, ids, func(values []float64) float64 { return values[0] })
}

// Ids without datapoints are absent from the result.
func (f *MetricsFetcher) fetch(ctx context.Context, q MetricQuery, ids []string, fold func([]float64) float64) (map[string]float64, error) {
	results := make(map[string]float64, len(ids))
	if len(ids) == 0 {
		return results, nil
	}

	end := f.now().UTC()
	start := end.Add(-q.Lookback)

	for offset := 0; offset < len(ids); offset += maxMetricQueries {
		batch := ids[offset:min(offset+maxMetricQueries, len(ids))]

		queries := make([]cwTypes.MetricDataQuery, 0, len(batch))
		for i, id := range batch {
			dims := []cwTypes.Dimension{{Name: aws.String(q.Dimension), Value: aws.String(id)}}
			for name, value := range q.Fixed {
				dims = append(dims, cwTypes.Dimension{Name: aws.String(name), Value: aws.String(value)})
			}
			queries = append(queries, cwTypes.MetricDataQuery{
				Id: aws.String(fmt.Sprintf("m%d", i)),
				MetricStat: &cwTypes.MetricStat{
					Metric: &cwTypes.Metric{
						Namespace:  aws.String(q.Namespace),
						MetricName: aws.String(q.MetricName),
						Dimensions: dims,
					},
					Period: aws.Int32(int32(q.Period.Seconds())),
					Stat:   aws.String(q.Stat),
				},
			})
		}

		input := &cloudwatch.GetMetricDataInput{
			MetricDataQueries: queries,
			StartTime:         aws.Time(start),
			EndTime:           aws.Time(end),
			ScanBy:            cwTypes.ScanByTimestampDescending,
		}
		paginator := cloudwatch.NewGetMetricDataPaginator(f.client, input)
		values := make(map[int][]float64, len(batch))
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("get metric data %s/%s: %w", q.Namespace, q.MetricName, err)
			}
			for _, r := range page.MetricDataResults {
				var idx int
				if _, err := fmt.Sscanf(aws.ToString(r.Id), "m%d", &idx); err != nil || idx >= len(batch) {
					continue
				}
				values[idx] = append(values[idx], r.Values...)
			}
		}
		for idx, v := range values {
			if len(v) > 0 {
				results[batch[idx]] = fold(v)
			}
		}
	}
	return results, nil
}
