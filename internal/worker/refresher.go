package worker

// refresher.go
// Bounded-interval refresh of the cached register snapshot. Push events
// (events.go) keep the cache hot after mutations; this job is the floor:
// the snapshot can never be silently staler than one poll interval, even
// when an event is lost or a mutation happened out-of-band.

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/Afa-Tecnologia/alfa360-sub004/internal/cache"
	"github.com/Afa-Tecnologia/alfa360-sub004/internal/repository"
)

// StartStatusRefresher schedules the periodic snapshot refresh and returns
// the scheduler so the composition root can shut it down.
func StartStatusRefresher(ctx context.Context, repo repository.CaixaRepository, c *cache.StatusCache, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			refreshCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			open, err := repo.FindOpen(refreshCtx)
			if err != nil {
				log.Error().Err(err).Msg("status refresher: store read failed")
				return
			}
			if err := c.Set(refreshCtx, open); err != nil {
				log.Error().Err(err).Msg("status refresher: cache write failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Info().Dur("interval", interval).Msg("status refresher started")
	return sched, nil
}
