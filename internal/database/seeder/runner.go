package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"store-monitor/internal/database"
	"store-monitor/internal/logger"
)

type Runner struct {
	Seeders []Seeder
	Logger  *logrus.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	log := logger.OrDefault(r.Logger)
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		log.WithFields(logrus.Fields{
			"seeder":   s.Name(),
			"duration": time.Since(start).String(),
		}).Info("[Seeder] done")
	}
	return nil
}
