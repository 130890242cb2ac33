/*
scheduler.go - Period-close scheduler

PURPOSE:
  Periodically compares the current pay period with the last one it saw.
  When the wall clock has moved past a period's end, publishes a
  period.closed event carrying that period's totals, once per period.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The first check only records the current period
  - Several periods passing between checks emit one event each, oldest first

USAGE:
  scheduler := NewPeriodCloseScheduler(tracker, publisher, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - events/events.go: Event model
  - timesheet/summary.go: Totals carried by the event
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/warp/worklog-engine/engine"
	"github.com/warp/worklog-engine/events"
	"github.com/warp/worklog-engine/timesheet"
)

// maxClosedPerCheck bounds catch-up after a long pause.
const maxClosedPerCheck = 48

// PeriodCloseScheduler announces closed pay periods.
type PeriodCloseScheduler struct {
	Tracker       *timesheet.Tracker
	Publisher     events.Publisher
	CheckInterval time.Duration
	Enabled       bool

	log    zerolog.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	checkMu  sync.Mutex
	lastSeen engine.Period
}

// NewPeriodCloseScheduler creates a new scheduler.
func NewPeriodCloseScheduler(tracker *timesheet.Tracker, publisher events.Publisher, log zerolog.Logger) *PeriodCloseScheduler {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &PeriodCloseScheduler{
		Tracker:       tracker,
		Publisher:     publisher,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		log:           log.With().Str("component", "scheduler").Logger(),
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *PeriodCloseScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.log.Info().Msg("disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)

	go s.run()

	s.log.Info().Dur("interval", s.CheckInterval).Msg("started")
}

// Stop stops the scheduler.
func (s *PeriodCloseScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.log.Info().Msg("stopped")
	}
}

func (s *PeriodCloseScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.Check(context.Background())

	for {
		select {
		case <-s.ticker.C:
			s.Check(context.Background())
		case <-s.stop:
			return
		}
	}
}

// Check publishes one event per period closed since the previous check and
// returns those periods.
func (s *PeriodCloseScheduler) Check(ctx context.Context) []engine.Period {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	current := s.Tracker.CurrentPeriod()
	if !s.lastSeen.Valid() || !s.lastSeen.Start.Before(current.Start) {
		s.lastSeen = current
		return nil
	}

	pc := s.Tracker.PeriodConfig()
	var closed []engine.Period
	for p := s.lastSeen; p.Start.Before(current.Start) && len(closed) < maxClosedPerCheck; p = pc.NextPeriod(p) {
		closed = append(closed, p)
	}
	s.lastSeen = current

	for _, p := range closed {
		summary := s.Tracker.Summary(p)
		err := s.Publisher.Publish(ctx, events.Event{
			Type:         events.PeriodClosed,
			Period:       p.Value,
			PeriodLabel:  p.Label,
			TotalMinutes: summary.TotalMinutes,
			GrandTotal:   engine.FormatMoney(summary.Breakdown.GrandTotal),
			OccurredAt:   s.Tracker.Now(),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("period", p.Value).Msg("failed to publish period close")
			continue
		}
		s.log.Info().
			Str("period", p.Label).
			Str("total", summary.Total).
			Int("entries", len(summary.Entries)).
			Msg("period closed")
	}
	return closed
}
