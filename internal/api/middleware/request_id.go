package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey = "request_id"
	// requestIDMaxLen 外部传入的 Request-ID 最大长度
	requestIDMaxLen = 64
)

// 外部 ID 只接受可安全写入日志与响应头的字符
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// RequestID 请求追踪 ID 中间件
// 沿用请求头 X-Request-ID，缺失或不合法时生成 UUID，
// 写入 gin.Context 与响应头，日志中间件据此关联一次上传的全部日志
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if len(rid) > requestIDMaxLen || !requestIDPattern.MatchString(rid) {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}
