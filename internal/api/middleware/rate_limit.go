package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/pkg/redis"
	"fleetwave/backend/pkg/response"
)

// 限流作用域；同一主体在不同作用域下分别计数
const (
	RateScopeIP    = "ip"    // 认证前按来源 IP
	RateScopeAPI   = "api"   // 认证后按身份
	RateScopeHeavy = "heavy" // 导出、批量提醒等重操作
)

// RateLimit 按作用域和请求主体计数的滑动窗口限流。
// 挂在 JWTAuth 之后时主体为司机或用户身份，之前则退回来源 IP。
// rdb 为 nil 或 Redis 出错时放行
func RateLimit(rdb *redis.Client, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := "rate_limit:" + scope + ":" + rateSubject(c)
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
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

// rateSubject 司机账号按 driver_id 计数，同一司机多端登录共享额度
func rateSubject(c *gin.Context) string {
	if id := c.GetString("driver_id"); id != "" {
		return "driver:" + id
	}
	if id := c.GetString("user_id"); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}
