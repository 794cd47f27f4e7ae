package service

import (
	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/timer"
)

type HealthService struct {
	engine *timer.Engine
}

func NewHealthService(engine *timer.Engine) *HealthService {
	return &HealthService{engine: engine}
}

// Health 存储写入失败时 store 为 degraded，计时器本身仍可用
type Health struct {
	Status      string       `json:"status"`
	Timer       timer.Status `json:"timer"`
	Store       string       `json:"store"`
	StoreError  string       `json:"store_error,omitempty"`
	FrameActive bool         `json:"frame_active"`
}

func (s *HealthService) Check() Health {
	h := Health{
		Status:      "ok",
		Timer:       s.engine.Status(),
		Store:       "ok",
		FrameActive: s.engine.Ticking(),
	}
	if err := s.engine.PersistErr(); err != nil {
		h.Store = "degraded"
		h.StoreError = err.Error()
	}
	return h
}
