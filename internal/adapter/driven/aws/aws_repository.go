package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/diillson/aws-cost-report/internal/domain/repository"
)

// STSAPI is the minimal interface used to identify the account.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Loader carrega e guarda a aws.Config de um profile/região.
type Loader struct {
	profile string
	region  string

	once sync.Once
	cfg  aws.Config
	err  error
}

// NewLoader creates a Loader. Empty profile or region fall back to the SDK's default chain.
func NewLoader(profile, region string) *Loader {
	return &Loader{profile: profile, region: region}
}

// Config loads the shared AWS configuration once.
func (l *Loader) Config(ctx context.Context) (aws.Config, error) {
	l.once.Do(func() {
		var opts []func(*config.LoadOptions) error
		if l.profile != "" {
			opts = append(opts, config.WithSharedConfigProfile(l.profile))
		}
		if l.region != "" {
			opts = append(opts, config.WithRegion(l.region))
		}
		l.cfg, l.err = config.LoadDefaultConfig(ctx, opts...)
		if l.err != nil {
			l.err = fmt.Errorf("failed to load AWS config for profile %q: %w", l.profile, l.err)
			return
		}
		if l.cfg.Region == "" {
			l.cfg.Region = "us-east-1"
		}
	})
	return l.cfg, l.err
}

// AWSRepositoryImpl implementa o AWSRepository.
type AWSRepositoryImpl struct {
	loader *Loader
	client STSAPI
}

// NewAWSRepository cria uma nova implementação do AWSRepository.
func NewAWSRepository(loader *Loader) repository.AWSRepository {
	return &AWSRepositoryImpl{loader: loader}
}

// NewAWSRepositoryWithClient uses the given STS client instead of loading one.
func NewAWSRepositoryWithClient(client STSAPI) repository.AWSRepository {
	return &AWSRepositoryImpl{client: client}
}

// GetAccountID returns the account the credentials belong to.
func (r *AWSRepositoryImpl) GetAccountID(ctx context.Context) (string, error) {
	client := r.client
	if client == nil {
		cfg, err := r.loader.Config(ctx)
		if err != nil {
			return "", err
		}
		client = sts.NewFromConfig(cfg)
	}

	result, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("error getting account ID: %w", err)
	}
	return aws.ToString(result.Account), nil
}
