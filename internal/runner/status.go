// File: internal/runner/status.go
package runner

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatusSink receives task status transitions and run-level messages. The
// supervisor calls it from the worker's execution context at arbitrary
// points; implementations must treat updates as fire-and-forget writes, never
// as synchronization points.
type StatusSink interface {
	UpdateTask(taskID uuid.UUID, status string, isError bool)
	Message(msg string)
}

// LogSink reports status transitions through the structured logger. It is the
// default sink for the CLI; richer frontends supply their own.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a logger-backed status sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("status")}
}

func (s *LogSink) UpdateTask(taskID uuid.UUID, status string, isError bool) {
	fields := []zap.Field{
		zap.String("task_id", taskID.String()),
		zap.String("status", status),
	}
	if isError {
		s.logger.Error("Task status", fields...)
		return
	}
	s.logger.Info("Task status", fields...)
}

func (s *LogSink) Message(msg string) {
	s.logger.Info(msg)
}
