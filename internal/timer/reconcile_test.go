package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runningAt(epoch, remaining int64) Snapshot {
	return Snapshot{
		Version:                 SchemaVersion,
		Status:                  StatusRunning,
		ConfigSeconds:           10,
		RemainingMs:             remaining,
		RunningStartEpochMs:     i64(epoch),
		RunningStartRemainingMs: i64(remaining),
	}
}

func TestReconcile_Running(t *testing.T) {
	const t0 = int64(1_760_000_000_000)
	const r = int64(10000)

	for _, d := range []int64{0, 1, 2500, 9999, 10000, 10001, 15000, int64(24 * time.Hour / time.Millisecond)} {
		got := Reconcile(runningAt(t0, r), t0+d)
		want := max(0, r-d)
		assert.Equal(t, want, got.RemainingMs, "d=%d", d)
		if want > 0 {
			assert.Equal(t, StatusRunning, got.Status, "d=%d", d)
			require.NotNil(t, got.RunningStartEpochMs)
			assert.Equal(t, t0+d, *got.RunningStartEpochMs)
			assert.Equal(t, want, *got.RunningStartRemainingMs)
			assert.False(t, got.StartHiddenForever)
		} else {
			assert.Equal(t, StatusCompleted, got.Status, "d=%d", d)
			assert.True(t, got.StartHiddenForever)
			assert.Nil(t, got.RunningStartEpochMs)
			assert.Nil(t, got.RunningStartRemainingMs)
		}
	}
}

func TestReconcile_ClockBehindCheckpoint(t *testing.T) {
	got := Reconcile(runningAt(5000, 8000), 1000)
	assert.Equal(t, StatusRunning, got.Status)
	assert.Equal(t, int64(8000), got.RemainingMs)
}

func TestReconcile_IsStableWhenReappliedAtSameInstant(t *testing.T) {
	once := Reconcile(runningAt(1000, 8000), 4000)
	twice := Reconcile(once, 4000)
	assert.Equal(t, once, twice)
}

func TestReconcile_NonRunningUnchanged(t *testing.T) {
	paused := Snapshot{Version: 1, Status: StatusPaused, ConfigSeconds: 10, RemainingMs: 4200}
	assert.Equal(t, paused, Reconcile(paused, 1<<40))

	idle := IdleSnapshot(10)
	idle.StartHiddenForever = true
	assert.Equal(t, idle, Reconcile(idle, 1<<40))
}

func TestReconcile_RunningWithoutCheckpointIsIdle(t *testing.T) {
	broken := Snapshot{Version: 1, Status: StatusRunning, ConfigSeconds: 10, RemainingMs: 4000, StartHiddenForever: true}
	got := Reconcile(broken, 1<<40)
	assert.Equal(t, Snapshot{Version: 1, Status: StatusIdle, ConfigSeconds: 10, RemainingMs: 10000, StartHiddenForever: true}, got)
}
