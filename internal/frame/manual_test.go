package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_AdvanceRunsPendingInOrder(t *testing.T) {
	m := NewManual()
	var order []int
	var seen []time.Duration
	m.ScheduleNextFrame(func(now time.Duration) { order = append(order, 1); seen = append(seen, now) })
	m.ScheduleNextFrame(func(now time.Duration) { order = append(order, 2); seen = append(seen, now) })

	assert.Equal(t, 2, m.Advance(16*time.Millisecond))
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, []time.Duration{16 * time.Millisecond, 16 * time.Millisecond}, seen)
	assert.Zero(t, m.Pending())
	assert.Zero(t, m.Advance(16*time.Millisecond))
	assert.Equal(t, 32*time.Millisecond, m.Now())
}

func TestManual_RescheduleWaitsForNextAdvance(t *testing.T) {
	m := NewManual()
	calls := 0
	var cb func(time.Duration)
	cb = func(time.Duration) {
		calls++
		m.ScheduleNextFrame(cb)
	}
	m.ScheduleNextFrame(cb)

	m.Advance(time.Millisecond)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.Pending())

	m.Step(100*time.Millisecond, 16*time.Millisecond)
	// 6 个整帧加 4ms 余数帧
	assert.Equal(t, 8, calls)
	assert.Equal(t, 101*time.Millisecond, m.Now())
}

func TestManual_CancelAndSkip(t *testing.T) {
	m := NewManual()
	fired := false
	id := m.ScheduleNextFrame(func(time.Duration) { fired = true })
	m.Cancel(id)
	m.Cancel(id + 100)

	m.Skip(time.Second)
	assert.Equal(t, time.Second, m.Now())
	assert.Zero(t, m.Advance(0))
	assert.False(t, fired)
}
