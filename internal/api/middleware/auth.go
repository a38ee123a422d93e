package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/pkg/jwt"
	"fleetwave/backend/pkg/redis"
	"fleetwave/backend/pkg/response"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token。
// rdb 非 nil 时检查托管认证服务写入的 Token 黑名单；Redis 出错时降级放行。
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.Role != jwt.RoleAdmin && claims.Role != jwt.RoleDriver {
			response.Unauthorized(c, 10002, "Token 角色无效")
			c.Abort()
			return
		}
		if claims.Role == jwt.RoleDriver && claims.DriverID == "" {
			response.Unauthorized(c, 10002, "司机 Token 缺少 driver_id")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			revoked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		// 将用户信息注入上下文
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("driver_id", claims.DriverID)

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole, _ := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
