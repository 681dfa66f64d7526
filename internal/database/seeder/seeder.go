package seeder

import (
	"context"

	"store-monitor/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
