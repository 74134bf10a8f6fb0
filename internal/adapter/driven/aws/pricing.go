package aws

import "github.com/shopspring/decimal"

// Preços on-demand de us-east-1. Estimativas, não faturamento.
var (
	HoursPerMonth = decimal.NewFromInt(730)
	MonthsPerYear = decimal.NewFromInt(12)

	EIPHourly         = decimal.RequireFromString("0.005")
	SnapshotGBMonth   = decimal.RequireFromString("0.05")
	ALBHourly         = decimal.RequireFromString("0.0225")
	NLBHourly         = decimal.RequireFromString("0.0225")
	GWLBHourly        = decimal.RequireFromString("0.0125")
	LogsGBMonth       = decimal.RequireFromString("0.03")
	GP3Discount       = decimal.RequireFromString("0.20")
	ReservedDiscount  = decimal.RequireFromString("0.35")
	DefaultEBSGBMonth = decimal.RequireFromString("0.10")

	LambdaGBSecond         = decimal.RequireFromString("0.0000166667")
	LambdaMillionRequests  = decimal.RequireFromString("0.20")
	LambdaRightSizeSavings = decimal.RequireFromString("0.05")

	S3StandardGBMonth  = decimal.RequireFromString("0.023")
	S3GlacierIRGBMonth = decimal.RequireFromString("0.004")

	NATHourly = decimal.RequireFromString("0.045")
	NATDataGB = decimal.RequireFromString("0.045")

	// Compute Savings Plans, no upfront. Os de EC2 Instance chegam a 45%/60%.
	SavingsPlan1YearDiscount = decimal.RequireFromString("0.35")
	SavingsPlan3YearDiscount = decimal.RequireFromString("0.50")
)

var ec2Hourly = map[string]decimal.Decimal{
	"t2.micro":   decimal.RequireFromString("0.0116"),
	"t2.small":   decimal.RequireFromString("0.023"),
	"t2.medium":  decimal.RequireFromString("0.0464"),
	"t3.micro":   decimal.RequireFromString("0.0104"),
	"t3.small":   decimal.RequireFromString("0.0208"),
	"t3.medium":  decimal.RequireFromString("0.0416"),
	"t3.large":   decimal.RequireFromString("0.0832"),
	"m5.large":   decimal.RequireFromString("0.096"),
	"m5.xlarge":  decimal.RequireFromString("0.192"),
	"m5.2xlarge": decimal.RequireFromString("0.384"),
	"m5.4xlarge": decimal.RequireFromString("0.768"),
	"c5.large":   decimal.RequireFromString("0.085"),
	"c5.xlarge":  decimal.RequireFromString("0.17"),
	"c5.2xlarge": decimal.RequireFromString("0.34"),
	"r5.large":   decimal.RequireFromString("0.126"),
	"r5.xlarge":  decimal.RequireFromString("0.252"),
	"r5.2xlarge": decimal.RequireFromString("0.504"),
}

var ebsGBMonth = map[string]decimal.Decimal{
	"gp2":      decimal.RequireFromString("0.10"),
	"gp3":      decimal.RequireFromString("0.08"),
	"io1":      decimal.RequireFromString("0.125"),
	"io2":      decimal.RequireFromString("0.125"),
	"st1":      decimal.RequireFromString("0.045"),
	"sc1":      decimal.RequireFromString("0.015"),
	"standard": decimal.RequireFromString("0.05"),
}

var rdsHourly = map[string]decimal.Decimal{
	"db.t3.micro":   decimal.RequireFromString("0.017"),
	"db.t3.small":   decimal.RequireFromString("0.034"),
	"db.t3.medium":  decimal.RequireFromString("0.068"),
	"db.t3.large":   decimal.RequireFromString("0.136"),
	"db.m5.large":   decimal.RequireFromString("0.192"),
	"db.m5.xlarge":  decimal.RequireFromString("0.384"),
	"db.m5.2xlarge": decimal.RequireFromString("0.768"),
	"db.r5.large":   decimal.RequireFromString("0.29"),
	"db.r5.xlarge":  decimal.RequireFromString("0.58"),
	"db.r5.2xlarge": decimal.RequireFromString("1.16"),
}

// EBSMonthlyPerGB returns the storage price of a volume type; unknown types use the gp2 price.
func EBSMonthlyPerGB(volumeType string) decimal.Decimal {
	if p, ok := ebsGBMonth[volumeType]; ok {
		return p
	}
	return DefaultEBSGBMonth
}

// RDSHourly returns the on-demand price of an instance class and whether it is known.
func RDSHourly(class string) (decimal.Decimal, bool) {
	p, ok := rdsHourly[class]
	return p, ok
}

// EC2Hourly returns the Linux on-demand price of an instance type and whether it is known.
func EC2Hourly(instanceType string) (decimal.Decimal, bool) {
	p, ok := ec2Hourly[instanceType]
	return p, ok
}

// monthly converts an hourly price into a monthly one, rounded to cents.
func monthly(hourly decimal.Decimal) decimal.Decimal {
	return hourly.Mul(HoursPerMonth).Round(2)
}

// lambdaMonthly prices a month of invocations at the given memory and average duration.
// The account-wide free tier is not applied.
func lambdaMonthly(memoryMB int32, avgDurationMs, invocations float64) decimal.Decimal {
	gbSeconds := decimal.NewFromInt32(memoryMB).Div(decimal.NewFromInt(1024)).
		Mul(decimal.NewFromFloat(avgDurationMs).Div(decimal.NewFromInt(1000))).
		Mul(decimal.NewFromFloat(invocations))
	requests := decimal.NewFromFloat(invocations).Div(decimal.NewFromInt(1_000_000)).Mul(LambdaMillionRequests)
	return gbSeconds.Mul(LambdaGBSecond).Add(requests).Round(2)
}

// bytesToGB uses decimal GB, as AWS bills storage.
func bytesToGB(b int64) decimal.Decimal {
	return decimal.NewFromInt(b).Div(decimal.NewFromInt(1_000_000_000))
}
