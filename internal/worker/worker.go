// Package worker provides the background loop that runs periodic maintenance
// jobs against the todo store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nadmax/yantodo/internal/logger"
)

const defaultPollInterval = time.Hour

// JobHandler runs one maintenance pass. now is already in the worker's
// location.
type JobHandler func(ctx context.Context, now time.Time) error

type Worker struct {
	id           string
	handlers     map[string]JobHandler
	order        []string
	stop         chan bool
	done         chan struct{}
	pollInterval time.Duration
	now          func() time.Time
	loc          *time.Location
}

func NewWorker(id string, loc *time.Location) *Worker {
	if loc == nil {
		loc = time.Local
	}

	return &Worker{
		id:           id,
		handlers:     make(map[string]JobHandler),
		stop:         make(chan bool),
		done:         make(chan struct{}),
		pollInterval: defaultPollInterval,
		now:          time.Now,
		loc:          loc,
	}
}

// RegisterHandler adds a job. Jobs run in registration order; registering
// a name twice replaces the handler but keeps its position.
func (w *Worker) RegisterHandler(name string, handler JobHandler) {
	if _, exists := w.handlers[name]; !exists {
		w.order = append(w.order, name)
	}
	w.handlers[name] = handler
}

func (w *Worker) SetPollInterval(d time.Duration) {
	if d > 0 {
		w.pollInterval = d
	}
}

func (w *Worker) SetClock(now func() time.Time) {
	w.now = now
}

// Start runs every job once, then again on each tick until Stop is called.
func (w *Worker) Start() {
	logger.Info("worker started", "worker_id", w.id, "interval", w.pollInterval, "jobs", len(w.order))
	defer close(w.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	_ = w.RunOnce(ctx)

	for {
		select {
		case <-w.stop:
			logger.Info("worker stopped", "worker_id", w.id)
			return
		case <-ticker.C:
			_ = w.RunOnce(ctx)
		}
	}
}

// RunOnce runs every registered job and returns their joined errors. A
// failing job does not prevent the others from running.
func (w *Worker) RunOnce(ctx context.Context) error {
	now := w.now().In(w.loc)

	var errs []error
	for _, name := range w.order {
		start := time.Now()
		if err := w.handlers[name](ctx, now); err != nil {
			logger.Error("job failed", "worker_id", w.id, "job", name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		logger.Debug("job finished", "worker_id", w.id, "job", name, "duration", time.Since(start))
	}

	return errors.Join(errs...)
}

// Stop ends the loop and waits for the current pass to finish.
func (w *Worker) Stop() {
	w.stop <- true
	<-w.done
}
