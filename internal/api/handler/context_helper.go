package handler

import (
	"github.com/gin-gonic/gin"

	"fleetwave/backend/pkg/jwt"
	"fleetwave/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get("role")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustAccessDriver 校验当前调用方能否访问 driverID 的数据：
// 管理员可访问任意司机，司机只能访问自己。无权限时写入 403 并返回 false。
func MustAccessDriver(c *gin.Context, driverID string) bool {
	role, ok := MustGetRole(c)
	if !ok {
		return false
	}
	if role == jwt.RoleAdmin {
		return true
	}
	own, _ := c.Get("driver_id")
	if s, _ := own.(string); s != "" && s == driverID {
		return true
	}
	response.Forbidden(c, 10003, "无权访问其他司机的数据")
	return false
}
