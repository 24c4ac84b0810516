// File: internal/runner/supervisor.go
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/pagepilot/internal/schedule"
	"github.com/xkilldash9x/pagepilot/internal/settings"
)

// TaskExecutor runs a single task to completion.
type TaskExecutor interface {
	Execute(ctx context.Context, task settings.Task) error
}

// Supervisor drives one run: it queues every enabled task, honors each task's
// schedule, and executes them strictly one after another. One task's failure
// never stops the run.
type Supervisor struct {
	doc    *settings.Document
	exec   TaskExecutor
	sink   StatusSink
	logger *zap.Logger
	// now is swappable for tests.
	now func() time.Time
}

func NewSupervisor(doc *settings.Document, exec TaskExecutor, sink StatusSink, logger *zap.Logger) *Supervisor {
	return &Supervisor{
		doc:    doc,
		exec:   exec,
		sink:   sink,
		logger: logger.Named("supervisor"),
		now:    time.Now,
	}
}

// Run processes every enabled task sequentially. It returns an error only
// when the run itself could not proceed (cancellation); individual task
// failures are reported through the sink and the log.
func (s *Supervisor) Run(ctx context.Context) error {
	tasks := s.doc.EnabledTasks()
	if len(tasks) == 0 {
		s.sink.Message("No enabled tasks to run.")
		return nil
	}

	for _, t := range tasks {
		s.sink.UpdateTask(t.ID, "queued", false)
	}
	s.sink.Message(fmt.Sprintf("Starting run with %d task(s).", len(tasks)))

	for _, task := range tasks {
		// Re-evaluate the schedule at dispatch time, not at queue time: an
		// earlier task may have run long enough to push a one-shot daily
		// task past its window.
		now := s.now()
		if schedule.ShouldSkip(task, now) {
			s.sink.UpdateTask(task.ID, "skipped (scheduled time already passed)", false)
			s.logger.Info("Skipping task past its scheduled time", zap.String("task", task.Name))
			continue
		}

		if wait := schedule.ComputeWait(task, now); wait > 0 {
			target := now.Add(wait)
			s.sink.UpdateTask(task.ID, fmt.Sprintf("waiting until %s", target.Format("2006-01-02 15:04")), false)
			s.logger.Info("Waiting before task",
				zap.String("task", task.Name),
				zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				s.sink.Message("Run cancelled.")
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		s.sink.UpdateTask(task.ID, "running", false)
		s.logger.Info("Executing task", zap.String("task", task.Name))

		err := s.runTask(ctx, task)
		switch {
		case err == nil:
			s.sink.UpdateTask(task.ID, "succeeded", false)
		case errors.Is(err, context.Canceled):
			s.sink.UpdateTask(task.ID, "cancelled", true)
			s.sink.Message("Run cancelled.")
			return err
		default:
			var authErr *AuthError
			if errors.As(err, &authErr) {
				s.sink.UpdateTask(task.ID, "auth-failed: "+authErr.Msg, true)
			} else {
				s.sink.UpdateTask(task.ID, "error: "+err.Error(), true)
			}
			s.logger.Error("Task failed", zap.String("task", task.Name), zap.Error(err))
		}
	}

	s.sink.Message("Run finished.")
	return nil
}

// runTask isolates a single execution so a panic in the driver stack is
// demoted to a task failure instead of killing the run.
func (s *Supervisor) runTask(ctx context.Context, task settings.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return s.exec.Execute(ctx, task)
}
