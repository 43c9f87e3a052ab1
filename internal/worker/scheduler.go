// Package worker runs the periodic schedule maintenance tasks.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mikvah-scheduler/internal/pkg/errs"
)

var errPanicked = errs.New("task panicked")

// Task runs every Interval. A task with a non-positive Interval runs once.
type Task struct {
	Name         string
	Interval     time.Duration
	InitialDelay time.Duration
	Run          func(ctx context.Context) error
}

type Metrics interface {
	TaskRun(task string, took time.Duration, err error)
}

type NopMetrics struct{}

func (NopMetrics) TaskRun(string, time.Duration, error) {}

// Scheduler runs each task on its own goroutine, so a task never overlaps itself.
type Scheduler struct {
	tasks   []Task
	metrics Metrics

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewScheduler(metrics Metrics, tasks ...Task) *Scheduler {
	return &Scheduler{tasks: tasks, metrics: metrics}
}

// Start returns immediately. Tasks stop when ctx is canceled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	slog.Info("Starting background scheduler", "tasks", len(s.tasks))
	for _, t := range s.tasks {
		s.wg.Add(1)
		go s.loop(ctx, t)
	}
}

// Stop cancels running tasks and waits for them to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	slog.Info("Background scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, t Task) {
	defer s.wg.Done()

	if t.InitialDelay > 0 {
		timer := time.NewTimer(t.InitialDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
	s.runOnce(ctx, t)
	if t.Interval <= 0 {
		slog.Warn("Task has no interval, not rescheduling", "task", t.Name, "interval", t.Interval)
		return
	}

	ticker := time.NewTicker(t.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx, t)
		case <-ctx.Done():
			slog.Info("Task stopped", "task", t.Name)
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, t Task) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := s.safeRun(ctx, t)
	took := time.Since(start)
	s.metrics.TaskRun(t.Name, took, err)

	if err != nil {
		slog.Error("Task failed", "task", t.Name, "duration", took, "error", err.Error())
		return
	}
	slog.Info("Task completed", "task", t.Name, "duration", took)
}

func (s *Scheduler) safeRun(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Task panicked", "task", t.Name, "panic", r)
			err = errPanicked
		}
	}()
	return t.Run(ctx)
}
