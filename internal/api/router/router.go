package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/api/handler"
	"github.com/maliky/schedule-checker-app/internal/api/middleware"
	"github.com/maliky/schedule-checker-app/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时上传接口不限流
func Setup(cfg *config.Config, h *handler.Handler, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())

	// 超出部分在 multipart 解析时报错
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	// ── 健康检查 ──
	r.GET("/health", h.Health.Health)

	upload := []gin.HandlerFunc{
		middleware.BodyLimit(cfg.Server.MaxUploadMB << 20),
		middleware.RateLimit(rdb, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window),
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 课表模块
		schedules := v1.Group("/schedules")
		{
			schedules.POST("/upload", append(upload, h.Schedule.Upload)...)
			schedules.GET("/download", h.Schedule.Download)
			schedules.GET("/charts/:kind", h.Schedule.Chart)
			schedules.GET("/calendar.ics", h.Schedule.Calendar)
			schedules.GET("/report", h.Schedule.Report)
		}

		// 考试安排模块
		exams := v1.Group("/exams")
		{
			exams.POST("/upload", append(upload, h.Exam.Upload)...)
			exams.GET("/download", h.Exam.Download)
			exams.GET("/calendar.ics", h.Exam.Calendar)
			exams.GET("/records", h.Exam.Records)
		}
	}

	return r
}
