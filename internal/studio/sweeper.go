package studio

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper runs Store.Sweep on a schedule.
type Sweeper struct {
	cron *cron.Cron
}

// NewSweeper schedules store sweeps every interval.
func NewSweeper(store *Store, interval time.Duration) (*Sweeper, error) {
	if interval <= 0 {
		interval = time.Minute
	}
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() { store.Sweep() }); err != nil {
		return nil, fmt.Errorf("studio: schedule sweep: %w", err)
	}
	return &Sweeper{cron: c}, nil
}

// Start begins running sweeps in the background.
func (w *Sweeper) Start() { w.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish.
func (w *Sweeper) Stop() {
	<-w.cron.Stop().Done()
}
