package elapsed

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Tracker keeps an Elapsed value current, recomputing it at local midnight.
type Tracker struct {
	start  time.Time
	now    func() time.Time
	cron   *cron.Cron
	logger zerolog.Logger

	mu      sync.RWMutex
	current Elapsed
}

func NewTracker(start time.Time, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	t := &Tracker{
		start:  start,
		now:    time.Now,
		cron:   cron.New(cron.WithLocation(loc)),
		logger: log.With().Str("component", "elapsed").Logger(),
	}
	t.update()
	return t
}

// Start schedules the daily recompute.
func (t *Tracker) Start() error {
	if _, err := t.cron.AddFunc("@midnight", t.update); err != nil {
		return err
	}
	t.update()
	t.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running recompute.
func (t *Tracker) Stop() {
	<-t.cron.Stop().Done()
}

func (t *Tracker) Current() Elapsed {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

func (t *Tracker) Since() time.Time {
	return t.start
}

func (t *Tracker) update() {
	e := Compute(t.start, t.now())
	t.mu.Lock()
	t.current = e
	t.mu.Unlock()
	t.logger.Debug().Int("total_days", e.TotalDays).Msg("elapsed time recomputed")
}
