package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/tartampluch/go-reminders/internal/config"
)

// Worker refreshes the tracker on a cron schedule and on demand.
// The default schedule fires at local midnight so days remaining roll over.
type Worker struct {
	Tracker  *Tracker
	Schedule string

	trigger chan struct{}
}

// NewWorker validates schedule (standard 5-field cron syntax).
func NewWorker(t *Tracker, schedule string) (*Worker, error) {
	if schedule == "" {
		schedule = config.DefaultRefreshCron
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRefreshCron, err)
	}
	return &Worker{
		Tracker:  t,
		Schedule: schedule,
		trigger:  make(chan struct{}, config.ChannelBufferSize),
	}, nil
}

// Trigger requests a refresh without blocking. Requests made while one is
// pending are merged.
func (w *Worker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once, then on every tick or trigger until ctx is done.
func (w *Worker) Run(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = w.Tracker.Refresh(ctx)

	c := cron.New()
	if _, err := c.AddFunc(w.Schedule, w.Trigger); err != nil {
		// NewWorker already validated the schedule.
		log.Error(config.ErrRefreshCron, config.LogKeyError, err)
		return
	}
	c.Start()
	defer c.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeySchedule, w.Schedule)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-w.trigger:
			log.Debug(config.MsgRefreshReq)
			_ = w.Tracker.Refresh(ctx)
		}
	}
}
