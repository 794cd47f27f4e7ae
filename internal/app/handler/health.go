package handler

import (
	"net/http"

	"github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/app/service"
	pkgerr "github.com/NCUHOME-Y/25-Hack-TimiCat-Timer/internal/pkg/err"
)

type HealthHandler struct {
	svc *service.HealthService
}

func NewHealthHandler(svc *service.HealthService) http.Handler {
	return &HealthHandler{svc: svc}
}

// ServeHTTP 存储降级时仍返回 200，计时器照常工作
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pkgerr.JSON(w, r, pkgerr.CodeOK, h.svc.Check())
}
