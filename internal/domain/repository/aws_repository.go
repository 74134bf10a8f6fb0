package repository

import "context"

// AWSRepository defines the AWS lookups the report itself needs.
type AWSRepository interface {
	GetAccountID(ctx context.Context) (string, error)
}
