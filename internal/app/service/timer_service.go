package service

import (
	"fmt"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/logger"
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
)

type TimerService struct {
	engine *timer.Engine
	log    *logger.Logger
}

func NewTimerService(engine *timer.Engine, log *logger.Logger) *TimerService {
	return &TimerService{engine: engine, log: log}
}

// Current 当前视图
func (s *TimerService) Current() timer.View {
	return s.engine.View()
}

// Apply 执行一条无参数命令；被守卫拒绝时返回错误和未改变的视图
func (s *TimerService) Apply(cmd timer.Command, visitorID string) (timer.View, error) {
	var err error
	switch cmd {
	case timer.CmdStart:
		err = s.engine.Start()
	case timer.CmdPause:
		err = s.engine.Pause()
	case timer.CmdResume:
		err = s.engine.Resume()
	case timer.CmdReset:
		err = s.engine.Reset()
	default:
		return s.engine.View(), fmt.Errorf("unsupported command %q", cmd)
	}
	return s.finish(cmd, visitorID, err)
}

// Configure 解析并设置时长，仅空闲时可用
func (s *TimerService) Configure(raw, visitorID string) (timer.View, error) {
	return s.finish(timer.CmdReconfigure, visitorID, s.engine.ReconfigureInput(raw))
}

func (s *TimerService) finish(cmd timer.Command, visitorID string, err error) (timer.View, error) {
	v := s.engine.View()
	if err != nil {
		s.log.Debug("timer command rejected", "cmd", cmd, "visitor", visitorID, "status", v.Status, "error", err)
		return v, err
	}
	s.log.Info("timer command", "cmd", cmd, "visitor", visitorID, "status", v.Status, "remaining_ms", v.RemainingMs)
	return v, nil
}
