package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/config"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/frame"
	pkgerr "github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/err"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/logger"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/storage"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Code      int        `json:"code"`
	Message   string     `json:"message"`
	Error     string     `json:"error"`
	Data      timer.View `json:"data"`
	RequestID string     `json:"request_id"`
}

type apiHarness struct {
	t      *testing.T
	cfg    *config.Config
	clk    clock.FakeClock
	frames *frame.Manual
	store  *storage.MemoryStore
	engine *timer.Engine
	h      http.Handler
	cookie *http.Cookie
	token  string
}

func newAPI(t *testing.T, mutate func(*config.Config)) *apiHarness {
	t.Helper()
	cfg := config.Default()
	cfg.StoreDriver = config.DriverMemory
	cfg.RateLimitRPS = 1000
	cfg.RateLimitBurst = 1000
	if mutate != nil {
		mutate(cfg)
	}

	a := &apiHarness{t: t, cfg: cfg, clk: clock.NewFake(), frames: frame.NewManual(), store: storage.NewMemoryStore()}
	a.clk.Set(time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC))
	a.engine = timer.New(a.store,
		timer.WithClock(a.clk),
		timer.WithFrames(a.frames),
		timer.WithKey(cfg.TimerKey),
		timer.WithDefaultSeconds(cfg.DefaultSeconds),
	)
	t.Cleanup(a.engine.Close)
	a.h = app.NewRouter(cfg, logger.New(io.Discard, "dev"), a.engine)
	return a
}

func (a *apiHarness) do(method, path, body string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, rd)
	if body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	if a.cookie != nil {
		r.AddCookie(a.cookie)
	}
	if a.token != "" {
		r.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, r)
	for _, c := range w.Result().Cookies() {
		if c.Name == "tcid" {
			a.cookie = c
		}
	}

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// advance 墙钟和帧同步推进
func (a *apiHarness) advance(d time.Duration) {
	for d > 0 {
		step := min(16*time.Millisecond, d)
		a.clk.Add(step)
		a.frames.Advance(step)
		d -= step
	}
}

func TestTimerAPI_FullCycle(t *testing.T) {
	a := newAPI(t, nil)

	w, env := a.do(http.MethodGet, "/api/v1/timer", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pkgerr.CodeOK, env.Code)
	assert.Equal(t, timer.StatusIdle, env.Data.Status)
	assert.Equal(t, "10.000s", env.Data.Display)
	assert.NotEmpty(t, env.RequestID)
	assert.Equal(t, env.RequestID, w.Header().Get("X-Request-ID"))

	w, env = a.do(http.MethodPost, "/api/v1/timer/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, timer.StatusRunning, env.Data.Status)
	assert.True(t, env.Data.CanPause)

	a.advance(4 * time.Second)
	_, env = a.do(http.MethodPost, "/api/v1/timer/pause", "")
	assert.Equal(t, timer.StatusPaused, env.Data.Status)
	assert.Equal(t, int64(6000), env.Data.RemainingMs)

	w, env = a.do(http.MethodPost, "/api/v1/timer/pause", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, pkgerr.CodeInvalidTransition, env.Code)
	assert.Equal(t, "cannot pause while paused", env.Error)
	assert.Equal(t, timer.StatusPaused, env.Data.Status, "409 carries the unchanged view")

	a.advance(time.Minute)
	_, env = a.do(http.MethodPost, "/api/v1/timer/resume", "")
	assert.Equal(t, timer.StatusRunning, env.Data.Status)
	a.advance(6 * time.Second)

	_, env = a.do(http.MethodGet, "/api/v1/timer", "")
	assert.Equal(t, timer.StatusCompleted, env.Data.Status)
	assert.Equal(t, "0.000s", env.Data.Display)
	assert.False(t, env.Data.StartVisible)

	w, env = a.do(http.MethodPost, "/api/v1/timer/start", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	_, env = a.do(http.MethodPost, "/api/v1/timer/reset", "")
	assert.Equal(t, timer.StatusIdle, env.Data.Status)
	assert.True(t, env.Data.StartHiddenForever)
	assert.False(t, env.Data.CanStart)
}

func TestTimerAPI_Configure(t *testing.T) {
	a := newAPI(t, nil)

	w, env := a.do(http.MethodPut, "/api/v1/timer/config", `{"seconds":25}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25, env.Data.ConfigSeconds)
	assert.Equal(t, int64(25000), env.Data.RemainingMs)

	_, env = a.do(http.MethodPut, "/api/v1/timer/config", `{"seconds":"0"}`)
	assert.Equal(t, 1, env.Data.ConfigSeconds, "values below 1 are clamped")

	w, env = a.do(http.MethodPut, "/api/v1/timer/config", `{"seconds":2.5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, pkgerr.CodeInvalidConfig, env.Code)
	assert.Equal(t, 1, env.Data.ConfigSeconds)

	w, env = a.do(http.MethodPut, "/api/v1/timer/config", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, pkgerr.CodeBadParam, env.Code)

	w, _ = a.do(http.MethodPut, "/api/v1/timer/config", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	a.do(http.MethodPost, "/api/v1/timer/start", "")
	w, env = a.do(http.MethodPut, "/api/v1/timer/config", `{"seconds":5}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, env.Data.ConfigSeconds)
}

func TestTimerAPI_PersistsAndReloads(t *testing.T) {
	a := newAPI(t, nil)
	a.do(http.MethodPost, "/api/v1/timer/start", "")
	a.advance(3 * time.Second)
	a.engine.Close()

	data, err := a.store.Get(context.Background(), a.cfg.TimerKey)
	require.NoError(t, err)
	snap, err := timer.DecodeSnapshot(data, timer.DefaultSeconds)
	require.NoError(t, err)
	assert.Equal(t, timer.StatusRunning, snap.Status)
	assert.Equal(t, int64(7000), snap.RemainingMs)

	// 新进程在 2 秒后加载
	a.clk.Add(2 * time.Second)
	e := timer.New(a.store, timer.WithClock(a.clk), timer.WithFrames(frame.NewManual()), timer.WithKey(a.cfg.TimerKey))
	defer e.Close()
	h := app.NewRouter(a.cfg, logger.New(io.Discard, "dev"), e)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/timer", nil))
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, timer.StatusRunning, env.Data.Status)
	assert.Equal(t, int64(5000), env.Data.RemainingMs)
}

func TestTimerAPI_StoreFailureIsReported(t *testing.T) {
	a := newAPI(t, nil)
	a.store.FailWrites(io.ErrShortWrite)

	w, env := a.do(http.MethodPost, "/api/v1/timer/start", "")
	require.Equal(t, http.StatusOK, w.Code, "store failure does not fail the command")
	assert.Equal(t, timer.StatusRunning, env.Data.Status)
	assert.NotEmpty(t, env.Data.PersistError)

	w = httptest.NewRecorder()
	a.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"degraded"`)
}

func TestTimerAPI_AuthRequired(t *testing.T) {
	a := newAPI(t, func(c *config.Config) {
		c.AuthRequired = true
		c.JWTSecret = "integration-secret"
	})

	w, env := a.do(http.MethodPost, "/api/v1/timer/start", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, pkgerr.CodeUnauthorized, env.Code)

	// 读取不需要令牌
	w, _ = a.do(http.MethodGet, "/api/v1/timer", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/guest-login", nil)
	r.AddCookie(a.cookie)
	a.h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data struct {
			Token    string `json:"token"`
			Username string `json:"username"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	require.NotEmpty(t, login.Data.Token)
	assert.True(t, strings.HasPrefix(login.Data.Username, "guest-"))
	assert.True(t, strings.HasPrefix(a.cookie.Value, strings.TrimPrefix(login.Data.Username, "guest-")))

	a.token = login.Data.Token
	w, env = a.do(http.MethodPost, "/api/v1/timer/start", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, timer.StatusRunning, env.Data.Status)
}

func TestTimerAPI_RateLimited(t *testing.T) {
	a := newAPI(t, func(c *config.Config) {
		c.RateLimitRPS = 0.01
		c.RateLimitBurst = 3
	})
	// 固定访客，所有请求落在同一个限流 key 上
	a.cookie = &http.Cookie{Name: "tcid", Value: uuid.NewString()}

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		w, _ := a.do(http.MethodGet, "/api/v1/timer", "")
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)

	w, env := a.do(http.MethodGet, "/api/v1/timer", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, pkgerr.CodeTooManyRequests, env.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestTimerAPI_CORSPreflight(t *testing.T) {
	a := newAPI(t, nil)
	r := httptest.NewRequest(http.MethodOptions, "/api/v1/timer/config", nil)
	r.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	a.h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTimerAPI_ConcurrentCommands(t *testing.T) {
	a := newAPI(t, nil)
	done := make(chan int, 20)
	for i := 0; i < 20; i++ {
		go func() {
			w := httptest.NewRecorder()
			a.h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/timer/start", nil))
			done <- w.Code
		}()
	}
	ok := 0
	for i := 0; i < 20; i++ {
		if <-done == http.StatusOK {
			ok++
		}
	}
	assert.Equal(t, 1, ok, "exactly one start wins")
	assert.Equal(t, 1, a.frames.Pending(), "one frame loop")
}
