package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maliky/schedule-checker-app/pkg/response"
)

// BodyLimit 上传请求体大小限制中间件
// maxBytes: 允许的最大请求体字节数（由 server.max_upload_mb 换算）
//
// Content-Length 已超限的请求直接拒绝；分块上传在读取时由 MaxBytesReader 截断，
// handler 通过 c.Error 上报后在这里统一转成 413。
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	message := fmt.Sprintf("上传文件不能超过 %d MB", maxBytes>>20)
	if maxBytes < 1<<20 {
		message = fmt.Sprintf("请求体不能超过 %d 字节", maxBytes)
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, message)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, err := range c.Errors {
			var maxErr *http.MaxBytesError
			if errors.As(err.Err, &maxErr) {
				response.Error(c, http.StatusRequestEntityTooLarge, 10005, message)
				return
			}
		}
	}
}
