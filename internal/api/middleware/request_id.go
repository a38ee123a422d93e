package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestID 请求追踪 ID 中间件
// 上游网关传入的 X-Request-ID 须为合法 UUID，否则重新生成，避免日志注入
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(rid); err != nil {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)

		c.Next()
	}
}

// GetRequestID 读取当前请求的追踪 ID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
