// File: internal/schedule/schedule_test.go
package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/pagepilot/internal/settings"
)

// noon on an arbitrary fixed day keeps every case deterministic.
var noon = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func delayTask(d time.Duration) settings.Task {
	dd := settings.Duration(d)
	return settings.Task{RunMode: settings.RunDelay, Delay: &dd}
}

func dailyTask(hour, minute int, repeat bool) settings.Task {
	return settings.Task{
		RunMode:     settings.RunDailyTime,
		RunAt:       &settings.TimeOfDay{Hour: hour, Minute: minute},
		RepeatDaily: repeat,
	}
}

func TestComputeWait_Immediate(t *testing.T) {
	task := settings.Task{RunMode: settings.RunImmediate}
	assert.Zero(t, ComputeWait(task, noon))
}

func TestComputeWait_Delay(t *testing.T) {
	assert.Equal(t, 5*time.Minute, ComputeWait(delayTask(5*time.Minute), noon))
}

func TestComputeWait_DelayMissingOrNegative(t *testing.T) {
	task := settings.Task{RunMode: settings.RunDelay}
	assert.Zero(t, ComputeWait(task, noon), "nil delay waits zero")
	assert.Zero(t, ComputeWait(delayTask(-time.Second), noon), "negative delay waits zero")
}

func TestComputeWait_DailyFuture(t *testing.T) {
	// 14:30 today is 2h30m away from noon.
	assert.Equal(t, 2*time.Hour+30*time.Minute, ComputeWait(dailyTask(14, 30, true), noon))
}

func TestComputeWait_DailyRollover(t *testing.T) {
	// 09:00 already passed; a repeating task targets tomorrow 09:00.
	assert.Equal(t, 21*time.Hour, ComputeWait(dailyTask(9, 0, true), noon))
}

func TestComputeWait_DailyOneShotPassed(t *testing.T) {
	// A stale one-shot never rolls over; ShouldSkip guards it upstream.
	assert.Zero(t, ComputeWait(dailyTask(9, 0, false), noon))
	assert.True(t, ShouldSkip(dailyTask(9, 0, false), noon))
}

func TestComputeWait_DailyExactlyNow(t *testing.T) {
	// A target equal to now counts as already passed.
	task := dailyTask(12, 0, true)
	assert.Equal(t, 24*time.Hour, ComputeWait(task, noon))
	assert.True(t, ShouldSkip(dailyTask(12, 0, false), noon))
}

func TestShouldSkip_OnlyOneShotDailyGoesStale(t *testing.T) {
	cases := []struct {
		name string
		task settings.Task
		want bool
	}{
		{"immediate", settings.Task{RunMode: settings.RunImmediate}, false},
		{"delay", delayTask(time.Minute), false},
		{"repeating daily passed", dailyTask(9, 0, true), false},
		{"one-shot daily passed", dailyTask(9, 0, false), true},
		{"one-shot daily future", dailyTask(18, 0, false), false},
		{"one-shot daily without time", settings.Task{RunMode: settings.RunDailyTime}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ShouldSkip(tc.task, noon))
		})
	}
}

func TestShouldSkip_MidnightBoundary(t *testing.T) {
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	// 00:00 is "now" exactly at midnight, so a one-shot is stale immediately.
	assert.True(t, ShouldSkip(dailyTask(0, 0, false), midnight))
	// One second past midnight, a 23:59 one-shot is still in the future today.
	require.False(t, ShouldSkip(dailyTask(23, 59, false), midnight.Add(time.Second)))
}

func TestComputeWait_IgnoresDateOfRunAt(t *testing.T) {
	// Only the time of day matters; the wait is always under 24 hours.
	for hour := 0; hour < 24; hour++ {
		wait := ComputeWait(dailyTask(hour, 0, true), noon)
		assert.GreaterOrEqual(t, wait, time.Duration(0))
		assert.LessOrEqual(t, wait, 24*time.Hour)
	}
}
