// File: internal/schedule/schedule.go
// Pure timing arithmetic for the run supervisor: when does a task run, and
// should a stale one-shot task run at all. Nothing here sleeps or touches a
// clock; callers pass "now" in so the logic is directly testable.
package schedule

import (
	"time"

	"github.com/xkilldash9x/pagepilot/internal/settings"
)

// ShouldSkip reports whether the task's execution window has already elapsed.
// Only one-shot daily tasks can go stale: once now's time of day reaches the
// configured time, the window is gone and the task must not run. The caller
// must evaluate this before computing any wait so a stale task never executes
// out of window.
func ShouldSkip(t settings.Task, now time.Time) bool {
	if t.RunMode != settings.RunDailyTime || t.RepeatDaily || t.RunAt == nil {
		return false
	}
	// Target exactly equal to now counts as already passed.
	return !t.RunAt.At(now).After(now)
}

// ComputeWait returns how long to wait before executing the task.
//
//   - Immediate: zero.
//   - Delay: the configured delay; missing or non-positive delays are treated
//     as zero (the settings layer normalizes these before a run).
//   - DailyTime: time until the configured time of day, rolling over to
//     tomorrow when today's slot has already passed and the task repeats. A
//     stale non-repeating task yields zero; ShouldSkip is the guard for that
//     case and runs first.
func ComputeWait(t settings.Task, now time.Time) time.Duration {
	switch t.RunMode {
	case settings.RunDelay:
		if t.Delay == nil || *t.Delay <= 0 {
			return 0
		}
		return t.Delay.Std()
	case settings.RunDailyTime:
		if t.RunAt == nil {
			return 0
		}
		target := t.RunAt.At(now)
		if !target.After(now) {
			if !t.RepeatDaily {
				return 0
			}
			target = target.AddDate(0, 0, 1)
		}
		return target.Sub(now)
	default:
		return 0
	}
}
