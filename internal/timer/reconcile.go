package timer

// Reconcile 按当前墙钟时间快进一个已存储的快照。
// 非运行状态原样返回；运行中则扣除离线期间流逝的时间，
// 归零时直接判定为已完成。
func Reconcile(s Snapshot, nowMs int64) Snapshot {
	s = s.normalize()
	if s.Status != StatusRunning {
		return s
	}

	elapsed := nowMs - *s.RunningStartEpochMs
	if elapsed < 0 {
		// 墙钟回拨，不凭空增加时间
		elapsed = 0
	}
	remaining := *s.RunningStartRemainingMs - elapsed
	if remaining <= 0 {
		s.Status = StatusCompleted
		s.RemainingMs = 0
		s.StartHiddenForever = true
		s.RunningStartEpochMs = nil
		s.RunningStartRemainingMs = nil
		return s
	}

	epoch := nowMs
	s.RemainingMs = remaining
	s.RunningStartEpochMs = &epoch
	s.RunningStartRemainingMs = &remaining
	return s
}
