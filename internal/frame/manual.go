package frame

import (
	"sort"
	"sync"
	"time"
)

// Manual 手动推进的帧调度器，时间和帧完全由调用方控制
type Manual struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  uint64
	pending map[uint64]func(time.Duration)
}

func NewManual() *Manual {
	return &Manual{pending: map[uint64]func(time.Duration){}}
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) ScheduleNextFrame(cb func(now time.Duration)) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.pending[m.nextID] = cb
	return m.nextID
}

func (m *Manual) Cancel(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pending, id)
}

func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Skip 只推进时钟，不触发帧
func (m *Manual) Skip(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}

// Advance 推进时钟并触发一帧，返回被调用的回调数。
// 回调里新调度的帧留到下一次 Advance。
func (m *Manual) Advance(d time.Duration) int {
	m.mu.Lock()
	m.now += d
	now := m.now
	ids := make([]uint64, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	cbs := make([]func(time.Duration), 0, len(ids))
	for _, id := range ids {
		cbs = append(cbs, m.pending[id])
		delete(m.pending, id)
	}
	m.mu.Unlock()

	for _, cb := range cbs {
		cb(now)
	}
	return len(cbs)
}

// Step 以固定间隔逐帧推进 total，最后一帧补齐余数
func (m *Manual) Step(total, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	for total > 0 {
		d := min(interval, total)
		m.Advance(d)
		total -= d
	}
}
