package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/goncharom/yomu/app/schedule"
)

// CycleRunner executes one collection cycle when a schedule fires.
type CycleRunner interface {
	RunCycle(ctx context.Context) error
}

// Daemon sleeps until the schedule set's next fire instant, runs a cycle,
// and repeats. Cycle errors are logged, never fatal; only Stop ends the
// loop. An in-flight cycle's delivery and commit finish before shutdown.
type Daemon struct {
	schedules *schedule.Set
	runner    CycleRunner
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	now func() time.Time
}

func NewDaemon(schedules *schedule.Set, runner CycleRunner) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	return &Daemon{
		schedules: schedules,
		runner:    runner,
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
	}
}

func (d *Daemon) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.run()
	}()
}

func (d *Daemon) Stop() {
	d.cancel()
	d.wg.Wait()
}

func (d *Daemon) run() {
	for {
		select {
		case <-d.ctx.Done():
			return
		default:
		}

		fireAt, err := d.schedules.NextFire(d.now())
		if err != nil {
			slog.Error("No runnable schedules, daemon loop exiting", "error", err)
			return
		}

		slog.Debug("Sleeping until next fire", "fire_at", fireAt)

		if !d.waitUntil(fireAt) {
			return
		}

		if err := d.runner.RunCycle(d.ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			slog.Error("Cycle failed, waiting for next fire", "error", err)
		}
	}
}

// waitUntil blocks until the wall clock reaches fireAt, re-sleeping on
// early wakes. It returns false when shutdown was requested first.
func (d *Daemon) waitUntil(fireAt time.Time) bool {
	for {
		wait := fireAt.Sub(d.now())
		if wait <= 0 {
			return true
		}

		timer := time.NewTimer(wait)
		select {
		case <-d.ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
	}
}
