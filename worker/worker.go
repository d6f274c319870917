package worker

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker long running worker
type Worker interface {
	Run(ctx context.Context) error
}

// OnWork work callback
type OnWork func() error

// BaseJob cron scheduled job
type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

// Start start the cron
func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

// Stop stop the cron
func (job *BaseJob) Stop() error {
	job.Cron.Stop()
	return nil
}

// Run run once, skipping overlapped fires
func (job *BaseJob) Run() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true
	job.OnWork()
	job.IsRunning = false
}

// TickWorker fixed interval loop worker. The delay stretches after an idle
// or failed pass so a broken dependency is not hammered.
type TickWorker struct {
	Delay    time.Duration
	ErrDelay time.Duration
}

// StartTick run f at the configured interval until ctx is done
func (w *TickWorker) StartTick(ctx context.Context, f func(ctx context.Context) error) error {
	delay := w.Delay
	if delay <= 0 {
		delay = time.Second
	}
	errDelay := w.ErrDelay
	if errDelay <= 0 {
		errDelay = 3 * time.Second
	}

	dur := time.Millisecond
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(dur):
			if err := f(ctx); err != nil {
				logger.FromContext(ctx).WithError(err).Debugln("tick failed")
				dur = errDelay
			} else {
				dur = delay
			}
		}
	}
}
