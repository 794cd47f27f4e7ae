package timer

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	SchemaVersion  = 1
	DefaultSeconds = 10
	// MaxSeconds 上限，保证 configSeconds*1000 不溢出
	MaxSeconds = math.MaxInt32
)

// Snapshot 持久化记录，足以在新进程里重建计时器
type Snapshot struct {
	Version                 int    `json:"version"`
	Status                  Status `json:"status"`
	ConfigSeconds           int    `json:"configSeconds"`
	RemainingMs             int64  `json:"remainingMs"`
	RunningStartEpochMs     *int64 `json:"runningStartEpochMs,omitempty"`
	RunningStartRemainingMs *int64 `json:"runningStartRemainingMs,omitempty"`
	StartHiddenForever      bool   `json:"startHiddenForever"`
}

// FullMs 配置时长对应的毫秒数
func (s Snapshot) FullMs() int64 { return int64(s.ConfigSeconds) * 1000 }

// IdleSnapshot 给定时长的初始空闲状态
func IdleSnapshot(seconds int) Snapshot {
	seconds = ClampSeconds(seconds)
	return Snapshot{
		Version:       SchemaVersion,
		Status:        StatusIdle,
		ConfigSeconds: seconds,
		RemainingMs:   int64(seconds) * 1000,
	}
}

// Encode 序列化为存储格式
func (s Snapshot) Encode() ([]byte, error) {
	s.Version = SchemaVersion
	return json.Marshal(s)
}

// ClampSeconds 把时长限制在 [1, MaxSeconds]
func ClampSeconds(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxSeconds {
		return MaxSeconds
	}
	return n
}

// ParseSeconds 解析用户输入的秒数；非整数返回 InvalidConfigError，
// 小于 1 的值交给 ClampSeconds 处理
func ParseSeconds(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			if strings.HasPrefix(s, "-") {
				return 1, nil
			}
			return MaxSeconds, nil
		}
		return 0, &InvalidConfigError{Input: raw}
	}
	if n > MaxSeconds {
		return MaxSeconds, nil
	}
	return ClampSeconds(int(n)), nil
}

var errNotObject = errors.New("snapshot is not a JSON object")

// DecodeSnapshot 逐字段校验并补默认值。
// 无法解析的内容返回默认空闲快照和错误，调用方记录后继续使用默认值。
func DecodeSnapshot(data []byte, defaultSeconds int) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return IdleSnapshot(defaultSeconds), err
	}
	if raw == nil {
		return IdleSnapshot(defaultSeconds), errNotObject
	}

	s := Snapshot{Version: SchemaVersion}
	s.ConfigSeconds = decodeSeconds(raw["configSeconds"], defaultSeconds)

	var status string
	if json.Unmarshal(raw["status"], &status) == nil && Status(status).Valid() {
		s.Status = Status(status)
	} else {
		s.Status = StatusIdle
	}

	full := s.FullMs()
	if n, ok := intField(raw["remainingMs"]); ok && n >= 0 {
		s.RemainingMs = min(n, full)
	} else {
		s.RemainingMs = full
	}

	epochRaw, ok := raw["runningStartEpochMs"]
	if !ok {
		// 旧版本字段名
		epochRaw = raw["runningStartEpoch"]
	}
	if n, ok := intField(epochRaw); ok {
		s.RunningStartEpochMs = &n
	}
	if n, ok := intField(raw["runningStartRemainingMs"]); ok {
		n = max(0, min(n, full))
		s.RunningStartRemainingMs = &n
	}

	var hidden bool
	if json.Unmarshal(raw["startHiddenForever"], &hidden) == nil {
		s.StartHiddenForever = hidden
	}

	return s.normalize(), nil
}

// normalize 维护快照不变量
func (s Snapshot) normalize() Snapshot {
	switch s.Status {
	case StatusRunning:
		if s.RunningStartEpochMs == nil || s.RunningStartRemainingMs == nil {
			// 缺少检查点，无法快进；退回空闲并恢复完整时长
			s.Status = StatusIdle
			s.RemainingMs = s.FullMs()
			s.RunningStartEpochMs = nil
			s.RunningStartRemainingMs = nil
		}
	case StatusCompleted:
		s.RemainingMs = 0
		s.StartHiddenForever = true
		fallthrough
	default:
		s.RunningStartEpochMs = nil
		s.RunningStartRemainingMs = nil
	}
	return s
}

// decodeSeconds 缺省用默认值；数字截断取整；字符串按整数解析；其它一律为 1
func decodeSeconds(v json.RawMessage, def int) int {
	if len(v) == 0 || string(v) == "null" {
		return ClampSeconds(def)
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		if f > MaxSeconds {
			return MaxSeconds
		}
		return ClampSeconds(int(math.Trunc(max(f, 0))))
	}
	var str string
	if err := json.Unmarshal(v, &str); err == nil {
		if n, err := ParseSeconds(str); err == nil {
			return n
		}
	}
	return 1
}

func intField(v json.RawMessage) (int64, bool) {
	if len(v) == 0 || string(v) == "null" {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(math.Trunc(f)), true
}
