package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/maxxlamenaace/roomio-be/internal/services"
)

// Scheduler prunes old activity-feed events on a cron schedule.
type Scheduler struct {
	events   services.EventServiceProvider
	schedule cron.Schedule
	maxAge   time.Duration
	done     chan bool
}

// NewScheduler creates a scheduler from a standard cron expression and a
// retention window in days.
func NewScheduler(events services.EventServiceProvider, cronExpr string, maxAgeDays int) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		events:   events,
		schedule: schedule,
		maxAge:   time.Duration(maxAgeDays) * 24 * time.Hour,
		done:     make(chan bool),
	}, nil
}

// Run starts the scheduler loop.
func (s *Scheduler) Run() {
	log.Info().Msg("Starting background scheduler...")

	// Run once immediately on start
	s.prune()

	for {
		next := s.schedule.Next(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping background scheduler.")
			return
		case <-timer.C:
			s.prune()
		}
	}
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.done <- true
}

func (s *Scheduler) prune() {
	cutoff := time.Now().Add(-s.maxAge)
	removed, err := s.events.PruneBefore(cutoff)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: failed to prune activity events")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("Scheduler: pruned activity events")
	}
}
