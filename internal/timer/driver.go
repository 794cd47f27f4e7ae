package timer

import "time"

// startLoop 启动帧循环。先停掉旧循环，保证任何时刻只有一个。
func (e *Engine) startLoop() {
	e.stopLoop()
	if e.closed {
		return
	}
	e.looping = true
	e.lastTick = e.frames.Now()
	e.scheduleFrame(e.gen)
}

func (e *Engine) scheduleFrame(gen uint64) {
	e.frameID = e.frames.ScheduleNextFrame(func(now time.Duration) {
		e.onFrame(gen, now)
	})
}

// stopLoop 取消挂起的帧并让在途回调失效
func (e *Engine) stopLoop() {
	if e.looping {
		e.frames.Cancel(e.frameID)
		e.looping = false
	}
	e.gen++
}

func (e *Engine) onFrame(gen uint64, now time.Duration) {
	e.mu.Lock()
	// 已取消或被新循环取代的回调直接丢弃
	if !e.looping || gen != e.gen || e.status != StatusRunning {
		e.mu.Unlock()
		return
	}
	e.tick(now)
	w := e.stage()
	e.mu.Unlock()
	e.flush(w)
}

// tick 按实际流逝的单调时间扣减，不假设固定帧间隔；写入由调用方在锁外完成
func (e *Engine) tick(now time.Duration) {
	delta := now - e.lastTick
	if delta < 0 {
		delta = 0
	}
	e.lastTick = now
	e.remaining -= delta

	if e.remaining <= 0 {
		e.complete()
		return
	}
	e.checkpoint()
	e.scheduleFrame(e.gen)
}

func (e *Engine) complete() {
	e.stopLoop()
	e.status = StatusCompleted
	e.remaining = 0
	e.hidden = true
	e.log.Info("timer completed", "key", e.key, "config_seconds", e.configSeconds)
}
