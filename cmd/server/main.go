package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/maliky/schedule-checker-app/config"
	"github.com/maliky/schedule-checker-app/internal/api/handler"
	"github.com/maliky/schedule-checker-app/internal/api/router"
	"github.com/maliky/schedule-checker-app/internal/catalog"
	"github.com/maliky/schedule-checker-app/internal/dto"
	"github.com/maliky/schedule-checker-app/internal/repository"
	"github.com/maliky/schedule-checker-app/internal/service"
	applogger "github.com/maliky/schedule-checker-app/pkg/logger"
	"github.com/maliky/schedule-checker-app/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("SCHEDULE_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 加载静态查找表（缺失时以空表运行，所有学院记为未登记）
	cat, err := catalog.Load(cfg.Catalog.Path)
	switch {
	case errors.Is(err, catalog.ErrCatalogNotFound):
		logger.Warn("静态查找表不存在，学院映射为空", zap.String("path", cfg.Catalog.Path))
		cat = catalog.Empty()
	case err != nil:
		logger.Fatal("加载静态查找表失败", zap.Error(err))
	default:
		logger.Info("静态查找表加载成功", zap.Int("colleges", cat.Len()))
	}

	// 4. 连接 Redis（可选：连接失败时降级为文件存储且不限流）
	var rdb *redis.Client
	storage := "file"
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，处理产物改为本地存储，上传不限流", zap.Error(err))
			rdb = nil
		} else {
			storage = "redis"
		}
	}

	// 5. 依赖注入: Repository → Service → Handler
	repo, err := repository.NewRepository(&cfg.Storage, rdb, logger)
	if err != nil {
		logger.Fatal("初始化产物存储失败", zap.Error(err))
	}
	svc, err := service.NewService(cfg, repo, cat, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}
	h := handler.NewHandler(svc, dto.HealthResponse{Storage: storage, Catalog: cat.Len()})

	// 6. 初始化路由
	engine := router.Setup(cfg, h, rdb, logger)

	// 7. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 8. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
