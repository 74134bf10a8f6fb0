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

// SnapshotAgeLimit is how old a snapshot must be before it is flagged.
const SnapshotAgeLimit = 90 * 24 * time.Hour

// EIPAPI is the minimal interface for Elastic IP operations.
type EIPAPI interface {
	DescribeAddresses(ctx context.Context, params *ec2.DescribeAddressesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAddressesOutput, error)
}

// EBSAPI is the minimal interface for volume operations.
type EBSAPI interface {
	DescribeVolumes(ctx context.Context, params *ec2.DescribeVolumesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVolumesOutput, error)
}

// SnapshotAPI is the minimal interface for snapshot operations.
type SnapshotAPI interface {
	DescribeSnapshots(ctx context.Context, params *ec2.DescribeSnapshotsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSnapshotsOutput, error)
}

// EIPProbe encontra Elastic IPs não associados.
type EIPProbe struct {
	client EIPAPI
	region string
}

func NewEIPProbe(client EIPAPI, region string) *EIPProbe {
	return &EIPProbe{client: client, region: region}
}

func (p *EIPProbe) Name() string { return "elastic-ips" }

// Scan prices every public address; unassociated ones are savings.
func (p *EIPProbe) Scan(ctx context.Context) (*Report, error) {
	out, err := p.client.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{})
	if err != nil {
		return nil, fmt.Errorf("describe addresses: %w", err)
	}

	cost := monthly(EIPHourly)
	report := &Report{Title: "Elastic IPs", Region: p.region, Scanned: len(out.Addresses), CurrentMonthlyCost: decimal.Zero}
	for _, addr := range out.Addresses {
		report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)
		if addr.AssociationId != nil {
			continue
		}
		id := aws.ToString(addr.AllocationId)
		report.Findings = append(report.Findings, Finding{
			ResourceID:     id,
			Description:    fmt.Sprintf("Release unassociated Elastic IP %s (%s)", aws.ToString(addr.PublicIp), id),
			MonthlySavings: cost,
		})
	}
	return report, nil
}

// EBSProbe encontra volumes sem anexo e volumes gp2 que podem migrar para gp3.
type EBSProbe struct {
	client EBSAPI
	region string
}

func NewEBSProbe(client EBSAPI, region string) *EBSProbe {
	return &EBSProbe{client: client, region: region}
}

func (p *EBSProbe) Name() string { return "ebs-volumes" }

func (p *EBSProbe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "EBS Volumes", Region: p.region, CurrentMonthlyCost: decimal.Zero}

	paginator := ec2.NewDescribeVolumesPaginator(p.client, &ec2.DescribeVolumesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe volumes: %w", err)
		}
		for _, vol := range page.Volumes {
			report.Scanned++
			size := int64(aws.ToInt32(vol.Size))
			volType := string(vol.VolumeType)
			cost := EBSMonthlyPerGB(volType).Mul(decimal.NewFromInt(size)).Round(2)
			report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)

			id := aws.ToString(vol.VolumeId)
			switch {
			case vol.State == ec2Types.VolumeStateAvailable:
				report.Findings = append(report.Findings, Finding{
					ResourceID:     id,
					Description:    fmt.Sprintf("Delete unattached volume %s (%d GiB %s)", id, size, volType),
					MonthlySavings: cost,
				})
			case vol.VolumeType == ec2Types.VolumeTypeGp2:
				savings := cost.Mul(GP3Discount).Round(2)
				if savings.IsZero() {
					continue
				}
				report.Findings = append(report.Findings, Finding{
					ResourceID:     id,
					Description:    fmt.Sprintf("Migrate volume %s (%d GiB) from gp2 to gp3", id, size),
					MonthlySavings: savings,
				})
			}
		}
	}
	return report, nil
}

// SnapshotProbe encontra snapshots próprios mais antigos que SnapshotAgeLimit.
type SnapshotProbe struct {
	client SnapshotAPI
	region string
	now    func() time.Time
}

func NewSnapshotProbe(client SnapshotAPI, region string, now func() time.Time) *SnapshotProbe {
	return &SnapshotProbe{client: client, region: region, now: now}
}

func (p *SnapshotProbe) Name() string { return "ec2-snapshots" }

func (p *SnapshotProbe) Scan(ctx context.Context) (*Report, error) {
	report := &Report{Title: "EC2 Snapshots", Region: p.region, CurrentMonthlyCost: decimal.Zero}
	cutoff := p.now().Add(-SnapshotAgeLimit)

	paginator := ec2.NewDescribeSnapshotsPaginator(p.client, &ec2.DescribeSnapshotsInput{
		OwnerIds: []string{"self"},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe snapshots: %w", err)
		}
		for _, snap := range page.Snapshots {
			report.Scanned++
			size := int64(aws.ToInt32(snap.VolumeSize))
			cost := SnapshotGBMonth.Mul(decimal.NewFromInt(size)).Round(2)
			report.CurrentMonthlyCost = report.CurrentMonthlyCost.Add(cost)

			started := aws.ToTime(snap.StartTime)
			if started.IsZero() || !started.Before(cutoff) || cost.IsZero() {
				continue
			}
			id := aws.ToString(snap.SnapshotId)
			days := int(p.now().Sub(started).Hours() / 24)
			report.Findings = append(report.Findings, Finding{
				ResourceID:     id,
				Description:    fmt.Sprintf("Delete snapshot %s (%d GiB, %d days old)", id, size, days),
				MonthlySavings: cost,
			})
		}
	}
	return report, nil
}
