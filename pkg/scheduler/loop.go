// Package scheduler runs the cooperative control loop shared by every task on a device.
package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Task is one unit of work advanced once per loop cadence. Tick may block; the loop
// does not start the next task until it returns.
type Task interface {
	Tick(ctx context.Context, now time.Time) error
}

type TaskFunc func(ctx context.Context, now time.Time) error

func (f TaskFunc) Tick(ctx context.Context, now time.Time) error { return f(ctx, now) }

type namedTask struct {
	name string
	task Task
}

type Loop struct {
	interval time.Duration
	tasks    []namedTask
	log      *logrus.Entry
	now      func() time.Time
}

func NewLoop(interval time.Duration, log *logrus.Entry) *Loop {
	return &Loop{interval: interval, log: log, now: time.Now}
}

// Add registers task. Tasks tick in registration order.
func (l *Loop) Add(name string, task Task) {
	l.tasks = append(l.tasks, namedTask{name: name, task: task})
}

// Run ticks every task at the loop cadence until ctx is done. Task errors are logged
// and never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Infof("control loop started, %d tasks every %s", len(l.tasks), l.interval)
	for {
		l.RunOnce(ctx)
		select {
		case <-ctx.Done():
			l.log.Info("control loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce gives every task a single tick.
func (l *Loop) RunOnce(ctx context.Context) {
	for _, t := range l.tasks {
		if ctx.Err() != nil {
			return
		}
		if err := t.task.Tick(ctx, l.now()); err != nil && ctx.Err() == nil {
			l.log.Errorf("%s: %v", t.name, err)
		}
	}
}
