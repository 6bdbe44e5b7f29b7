package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/maliky/schedule-checker-app/internal/dto"
	"github.com/maliky/schedule-checker-app/pkg/response"
)

// HealthHandler 健康检查
type HealthHandler struct {
	info dto.HealthResponse
}

// NewHealthHandler 创建 HealthHandler 实例
func NewHealthHandler(info dto.HealthResponse) *HealthHandler {
	if info.Status == "" {
		info.Status = "ok"
	}
	return &HealthHandler{info: info}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response.OK(c, h.info)
}
