package timer

import (
	"context"
	"sync"
	"time"

	"github.com/jmhodges/clock"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/frame"
)

// DefaultKey 持久化记录的默认键
const DefaultKey = "timicat_countdown_timer_v1"

// FrameScheduler 逐帧回调的调度器，Now 返回单调时间
type FrameScheduler interface {
	Now() time.Duration
	ScheduleNextFrame(cb func(now time.Duration)) uint64
	Cancel(id uint64)
}

// Store 持久化 KV 存储；Get 在键不存在时返回 (nil, nil)
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

type Logger interface {
	Debug(msg string, kvs ...interface{})
	Info(msg string, kvs ...interface{})
	Warn(msg string, kvs ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}

type Option func(*Engine)

func WithClock(c clock.Clock) Option { return func(e *Engine) { e.clk = c } }

func WithFrames(f FrameScheduler) Option { return func(e *Engine) { e.frames = f } }

func WithKey(key string) Option { return func(e *Engine) { e.key = key } }

func WithLogger(l Logger) Option { return func(e *Engine) { e.log = l } }

func WithDefaultSeconds(n int) Option { return func(e *Engine) { e.defaultSeconds = ClampSeconds(n) } }

func WithStoreTimeout(d time.Duration) Option { return func(e *Engine) { e.storeTimeout = d } }

// OnStoreError 写入失败时的旁路通知。回调在引擎锁内执行，不能再调用引擎方法。
func OnStoreError(fn func(error)) Option { return func(e *Engine) { e.onStoreError = fn } }

// Engine 单个倒计时器：状态机 + 帧驱动 + 快照持久化。
// 命令和帧回调由同一把锁串行化，存储写入在锁外按顺序进行。
type Engine struct {
	mu sync.Mutex
	// wmu 串行化存储写入，加锁顺序 wmu -> mu
	wmu sync.Mutex

	store          Store
	frames         FrameScheduler
	clk            clock.Clock
	log            Logger
	key            string
	defaultSeconds int
	storeTimeout   time.Duration
	onStoreError   func(error)

	status        Status
	configSeconds int
	remaining     time.Duration
	hidden        bool
	// 运行区间检查点，只在 running 时有效
	checkpointEpochMs     int64
	checkpointRemainingMs int64

	looping  bool
	frameID  uint64
	gen      uint64
	lastTick time.Duration
	closed   bool

	seq        uint64 // 已编码的快照序号，mu 保护
	flushed    uint64 // 已写入的最大序号，wmu 保护
	persistErr error
}

// New 创建引擎并从存储恢复状态；存储读失败或内容损坏都退回默认空闲状态
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		log:            nopLogger{},
		key:            DefaultKey,
		defaultSeconds: DefaultSeconds,
		storeTimeout:   2 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clk == nil {
		e.clk = clock.New()
	}
	if e.frames == nil {
		e.frames = frame.NewTicker(e.clk, frame.DefaultInterval)
	}

	e.mu.Lock()
	w, restored := e.load()
	e.mu.Unlock()
	if restored {
		e.flush(w)
	}
	return e
}

// load 读取并快进已保存的快照；没有快照时不写入
func (e *Engine) load() (pendingWrite, bool) {
	e.adopt(IdleSnapshot(e.defaultSeconds))

	ctx, cancel := context.WithTimeout(context.Background(), e.storeTimeout)
	data, err := e.store.Get(ctx, e.key)
	cancel()
	if err != nil {
		e.log.Warn("load snapshot failed", "key", e.key, "error", err)
		return pendingWrite{}, false
	}
	if data == nil {
		return pendingWrite{}, false
	}

	snap, err := DecodeSnapshot(data, e.defaultSeconds)
	if err != nil {
		e.log.Warn("corrupt snapshot, using defaults", "key", e.key, "error", err)
	}
	stored := snap.Status
	snap = Reconcile(snap, e.clk.Now().UnixMilli())
	e.adopt(snap)

	e.log.Info("timer restored", "key", e.key, "stored_status", stored, "status", e.status, "remaining_ms", snap.RemainingMs)
	if e.status == StatusRunning {
		e.startLoop()
	}
	return e.stage(), true
}

func (e *Engine) adopt(s Snapshot) {
	e.status = s.Status
	e.configSeconds = s.ConfigSeconds
	e.remaining = time.Duration(s.RemainingMs) * time.Millisecond
	e.hidden = s.StartHiddenForever
	if s.Status == StatusRunning {
		e.checkpointEpochMs = *s.RunningStartEpochMs
		e.checkpointRemainingMs = *s.RunningStartRemainingMs
	}
}

func (e *Engine) snapshot() Snapshot {
	s := Snapshot{
		Version:            SchemaVersion,
		Status:             e.status,
		ConfigSeconds:      e.configSeconds,
		RemainingMs:        e.remaining.Milliseconds(),
		StartHiddenForever: e.hidden,
	}
	if e.status == StatusRunning {
		epoch, rem := e.checkpointEpochMs, e.checkpointRemainingMs
		s.RunningStartEpochMs = &epoch
		s.RunningStartRemainingMs = &rem
	}
	return s
}

// checkpoint 记录当前运行区间的起点
func (e *Engine) checkpoint() {
	e.checkpointEpochMs = e.clk.Now().UnixMilli()
	e.checkpointRemainingMs = e.remaining.Milliseconds()
}

// pendingWrite 锁内编码好的快照，seq 越大越新
type pendingWrite struct {
	seq  uint64
	data []byte
	err  error
}

// stage 在 e.mu 内编码当前状态
func (e *Engine) stage() pendingWrite {
	e.seq++
	data, err := e.snapshot().Encode()
	return pendingWrite{seq: e.seq, data: data, err: err}
}

// flush 在 e.mu 之外写穿存储，慢存储不会挡住读视图。
// 写入按 seq 串行，已有更新的快照写过时直接丢弃旧的。
// 失败不影响内存状态，下一次成功写入会追平。
func (e *Engine) flush(w pendingWrite) {
	e.wmu.Lock()
	defer e.wmu.Unlock()
	if w.seq <= e.flushed {
		return
	}
	e.flushed = w.seq

	err := w.err
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), e.storeTimeout)
		err = e.store.Set(ctx, e.key, w.data)
		cancel()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.recordPersist(err)
}

func (e *Engine) recordPersist(err error) {
	if err != nil {
		if e.persistErr == nil {
			e.log.Warn("persist snapshot failed", "key", e.key, "status", e.status, "error", err)
		}
		e.persistErr = err
		if e.onStoreError != nil {
			e.onStoreError(err)
		}
		return
	}
	if e.persistErr != nil {
		e.log.Info("persist recovered", "key", e.key)
		e.persistErr = nil
	}
}

// mutate 在锁内执行命令，成功后在锁外写入新状态
func (e *Engine) mutate(fn func() error) error {
	e.mu.Lock()
	if err := fn(); err != nil {
		e.mu.Unlock()
		return err
	}
	w := e.stage()
	e.mu.Unlock()
	e.flush(w)
	return nil
}

func (e *Engine) full() time.Duration {
	return time.Duration(e.configSeconds) * time.Second
}

func (e *Engine) canStart() bool {
	return e.status == StatusIdle && !e.hidden && e.remaining > 0
}

func (e *Engine) canResume() bool {
	return e.status == StatusPaused && e.remaining > 0
}

func (e *Engine) invalid(cmd Command) error {
	return &InvalidTransitionError{From: e.status, Attempted: cmd}
}

// Start 仅在空闲、未永久隐藏且剩余时间大于 0 时可用
func (e *Engine) Start() error {
	return e.mutate(func() error {
		if !e.canStart() {
			return e.invalid(CmdStart)
		}
		e.status = StatusRunning
		e.remaining = e.full()
		e.checkpoint()
		e.startLoop()
		e.log.Debug("timer started", "config_seconds", e.configSeconds)
		return nil
	})
}

// Pause 停止帧循环，剩余时间保持上一次计算的值
func (e *Engine) Pause() error {
	return e.mutate(func() error {
		if e.status != StatusRunning {
			return e.invalid(CmdPause)
		}
		e.stopLoop()
		e.status = StatusPaused
		e.log.Debug("timer paused", "remaining_ms", e.remaining.Milliseconds())
		return nil
	})
}

func (e *Engine) Resume() error {
	return e.mutate(func() error {
		if !e.canResume() {
			return e.invalid(CmdResume)
		}
		e.status = StatusRunning
		e.checkpoint()
		e.startLoop()
		e.log.Debug("timer resumed", "remaining_ms", e.remaining.Milliseconds())
		return nil
	})
}

// Reset 回到空闲并恢复完整时长；不会清除 startHiddenForever
func (e *Engine) Reset() error {
	return e.mutate(func() error {
		if e.status == StatusIdle {
			return e.invalid(CmdReset)
		}
		e.stopLoop()
		e.status = StatusIdle
		e.remaining = e.full()
		e.log.Debug("timer reset", "start_hidden_forever", e.hidden)
		return nil
	})
}

// Reconfigure 仅空闲时可修改时长，小于 1 的值按 1 处理
func (e *Engine) Reconfigure(seconds int) error {
	return e.mutate(func() error {
		if e.status != StatusIdle {
			return e.invalid(CmdReconfigure)
		}
		e.configSeconds = ClampSeconds(seconds)
		e.remaining = e.full()
		e.log.Debug("timer reconfigured", "config_seconds", e.configSeconds)
		return nil
	})
}

// ReconfigureInput 解析文本输入后再修改时长
func (e *Engine) ReconfigureInput(raw string) error {
	n, err := ParseSeconds(raw)
	if err != nil {
		return err
	}
	return e.Reconfigure(n)
}

// Close 停止帧循环，不改变也不写入状态
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLoop()
	e.closed = true
}

// View 给界面层的只读视图
type View struct {
	Status             Status `json:"status"`
	ConfigSeconds      int    `json:"config_seconds"`
	RemainingMs        int64  `json:"remaining_ms"`
	Display            string `json:"display"`
	StartHiddenForever bool   `json:"start_hidden_forever"`
	StartVisible       bool   `json:"start_visible"`
	CanStart           bool   `json:"can_start"`
	CanPause           bool   `json:"can_pause"`
	CanResume          bool   `json:"can_resume"`
	CanReset           bool   `json:"can_reset"`
	PersistError       string `json:"persist_error,omitempty"`
}

func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := View{
		Status:             e.status,
		ConfigSeconds:      e.configSeconds,
		RemainingMs:        e.remaining.Milliseconds(),
		Display:            FormatRemaining(e.remaining),
		StartHiddenForever: e.hidden,
		StartVisible:       !e.hidden,
		CanStart:           e.canStart(),
		CanPause:           e.status == StatusRunning,
		CanResume:          e.canResume(),
		CanReset:           e.status != StatusIdle,
	}
	if e.persistErr != nil {
		v.PersistError = e.persistErr.Error()
	}
	return v
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) Remaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.remaining
}

func (e *Engine) ConfigSeconds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.configSeconds
}

func (e *Engine) StartHiddenForever() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hidden
}

// Snapshot 当前状态对应的持久化记录
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

// PersistErr 最近一次写入失败的错误；成功写入后清空
func (e *Engine) PersistErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.persistErr
}

// Ticking 帧循环是否在运行
func (e *Engine) Ticking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.looping
}
