// Package frame 提供逐帧回调调度器：生产环境用 Ticker，测试和嵌入场景用 Manual。
package frame

import (
	"sync"
	"time"

	"github.com/jmhodges/clock"
)

// DefaultInterval 约等于 60fps
const DefaultInterval = 16 * time.Millisecond

// Ticker 基于 clock 定时器的帧调度器，每次调度只触发一次回调
type Ticker struct {
	clk      clock.Clock
	interval time.Duration
	origin   time.Time

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]chan struct{}
}

func NewTicker(clk clock.Clock, interval time.Duration) *Ticker {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{
		clk:      clk,
		interval: interval,
		origin:   clk.Now(),
		pending:  map[uint64]chan struct{}{},
	}
}

// Now 自创建以来的单调时间
func (t *Ticker) Now() time.Duration {
	return t.clk.Since(t.origin)
}

func (t *Ticker) Interval() time.Duration { return t.interval }

// ScheduleNextFrame 在一个帧间隔后调用 cb；回调不持有调度器的锁
func (t *Ticker) ScheduleNextFrame(cb func(now time.Duration)) uint64 {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	stop := make(chan struct{})
	t.pending[id] = stop
	tm := t.clk.NewTimer(t.interval)
	t.mu.Unlock()

	go func() {
		select {
		case <-tm.C:
		case <-stop:
			tm.Stop()
			return
		}

		t.mu.Lock()
		_, live := t.pending[id]
		delete(t.pending, id)
		t.mu.Unlock()
		if live {
			cb(t.Now())
		}
	}()
	return id
}

// Cancel 取消尚未触发的帧；重复取消或已触发的 id 忽略
func (t *Ticker) Cancel(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if stop, ok := t.pending[id]; ok {
		close(stop)
		delete(t.pending, id)
	}
}

// Pending 挂起的帧数量
func (t *Ticker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
