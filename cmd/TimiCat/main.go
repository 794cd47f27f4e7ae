package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmhodges/clock"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/config"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/database"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/frame"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/logger"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Init(cfg.Env)
	defer func() { _ = log.Sync() }()
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 打开快照存储（memory/file/sqlite/postgres/pgx）
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, closeStore, err := database.OpenStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal("store init error", "driver", cfg.StoreDriver, "error", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Error("close store", "error", err)
		}
	}()

	// 引擎启动时会从存储恢复并快进
	clk := clock.New()
	engine := timer.New(store,
		timer.WithClock(clk),
		timer.WithFrames(frame.NewTicker(clk, cfg.FrameInterval)),
		timer.WithKey(cfg.TimerKey),
		timer.WithDefaultSeconds(cfg.DefaultSeconds),
		timer.WithStoreTimeout(cfg.StoreTimeout),
		timer.WithLogger(log.With("component", "timer")),
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.NewRouter(cfg, log, engine),
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          log.With("component", "http").StdLog(),
	}

	// 启动服务器
	go func() {
		log.Info("starting server", "addr", cfg.Addr, "env", cfg.Env, "store", cfg.StoreDriver, "timer", engine.Status())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", "error", err)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	// 停帧循环但不改状态，下次启动按墙钟快进
	engine.Close()
	log.Info("server stopped", "timer", engine.Status())
}
