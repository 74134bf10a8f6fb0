package repository

import (
	"context"
	"time"

	"github.com/diillson/aws-cost-report/internal/domain/entity"
)

// RunStore publishes run directories and the "latest" alias.
type RunStore interface {
	NewRunID(now time.Time) string
	Publish(ctx context.Context, run entity.Run) (string, error)
	LatestPath() string
}
