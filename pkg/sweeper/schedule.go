package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/centricity/ordersync/pkg/model"
)

// RunEvery sweeps immediately and then on every tick of interval until the
// context is cancelled. Sweep errors are logged; only cancellation stops
// the loop.
func (s *Sweeper) RunEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := s.SweepAll(ctx, model.TriggerSchedule); err != nil {
		log.Error().Err(err).Msg("Scheduled sweep failed")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.SweepAll(ctx, model.TriggerSchedule); err != nil {
				log.Error().Err(err).Msg("Scheduled sweep failed")
			}
		}
	}
}
