package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maliky/schedule-checker-app/pkg/redis"
	"github.com/maliky/schedule-checker-app/pkg/response"
)

// RateLimit 基于 Redis 固定窗口的上传限流中间件
// limit: 窗口内允许的最大请求数，<=0 表示不限流
// window: 窗口时长
// rdb 为 nil（未启用 Redis）时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("schedule:rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			// Redis 出错时降级放行
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
