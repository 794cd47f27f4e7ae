package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/service"
	pkgerr "github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/err"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/middleware"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
)

type TimerHandler struct {
	svc *service.TimerService
}

func NewTimerHandler(svc *service.TimerService) *TimerHandler {
	return &TimerHandler{svc: svc}
}

// Current GET /api/v1/timer
func (h *TimerHandler) Current(c *gin.Context) {
	pkgerr.JSON(c.Writer, c.Request, pkgerr.CodeOK, h.svc.Current())
}

// Start POST /api/v1/timer/start
func (h *TimerHandler) Start(c *gin.Context) { h.apply(c, timer.CmdStart) }

// Pause POST /api/v1/timer/pause
func (h *TimerHandler) Pause(c *gin.Context) { h.apply(c, timer.CmdPause) }

// Resume POST /api/v1/timer/resume
func (h *TimerHandler) Resume(c *gin.Context) { h.apply(c, timer.CmdResume) }

// Reset POST /api/v1/timer/reset
func (h *TimerHandler) Reset(c *gin.Context) { h.apply(c, timer.CmdReset) }

type configReq struct {
	// 数字或数字字符串都接受，小数由服务层拒绝
	Seconds json.Number `json:"seconds"`
}

var errSecondsRequired = errors.New("seconds is required")

// Configure PUT /api/v1/timer/config  body: {"seconds": 25}
func (h *TimerHandler) Configure(c *gin.Context) {
	var req configReq
	if err := c.ShouldBindJSON(&req); err != nil {
		pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeBadParam, err, nil)
		return
	}
	raw := strings.TrimSpace(req.Seconds.String())
	if raw == "" {
		pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeBadParam, errSecondsRequired, nil)
		return
	}
	v, err := h.svc.Configure(raw, middleware.VisitorID(c))
	h.respond(c, v, err)
}

func (h *TimerHandler) apply(c *gin.Context, cmd timer.Command) {
	v, err := h.svc.Apply(cmd, middleware.VisitorID(c))
	h.respond(c, v, err)
}

// respond 守卫失败返回 409 并附上当前视图，方便前端刷新按钮状态
func (h *TimerHandler) respond(c *gin.Context, v timer.View, err error) {
	switch {
	case err == nil:
		pkgerr.JSON(c.Writer, c.Request, pkgerr.CodeOK, v)
	case errors.Is(err, timer.ErrInvalidTransition):
		pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeInvalidTransition, err, v)
	case errors.Is(err, timer.ErrInvalidConfig):
		pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeInvalidConfig, err, v)
	default:
		pkgerr.Fail(c.Writer, c.Request, pkgerr.CodeInternal, err, nil)
	}
}
