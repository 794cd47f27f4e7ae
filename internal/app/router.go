package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/handler"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/service"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/config"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/logger"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/middleware"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/pkg/mypubliclib/util"
)

// NewRouter 组装路由和中间件链：请求 ID -> 恢复 -> 限流 -> gin
func NewRouter(cfg *config.Config, log *logger.Logger, engine *timer.Engine) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())                   // 捕获 panic 并返回 500
	r.Use(util.Cors(cfg.AllowOrigins))      // CORS 跨域支持
	r.Use(middleware.Visitor(cfg.IsProd())) // 为游客分配/识别 ID

	// 健康检查端点（用于负载均衡器和监控探测）
	hs := service.NewHealthService(engine)
	r.GET("/api/v1/healthz", gin.WrapH(handler.NewHealthHandler(hs)))

	// 游客登录
	r.POST("/guest-login", handler.GuestLogin(cfg.JWTSecret, cfg.TokenTTL))

	// 倒计时
	th := handler.NewTimerHandler(service.NewTimerService(engine, log))
	g := r.Group("/api/v1/timer")
	g.GET("", th.Current)

	cmds := g.Group("")
	if cfg.AuthRequired {
		cmds.Use(middleware.JWTAuth(cfg.JWTSecret))
	}
	cmds.POST("/start", th.Start)   // 开始
	cmds.POST("/pause", th.Pause)   // 暂停
	cmds.POST("/resume", th.Resume) // 继续
	cmds.POST("/reset", th.Reset)   // 重置
	cmds.PUT("/config", th.Configure)

	limited := middleware.RateLimit(r, middleware.VisitorKey, middleware.Limits{
		RPS:            cfg.RateLimitRPS,
		Burst:          cfg.RateLimitBurst,
		TrustedProxies: cfg.Proxies(),
	})
	return middleware.RequestID(middleware.Recovery(log)(limited))
}
