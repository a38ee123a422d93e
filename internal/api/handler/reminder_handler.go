package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/service"
	"fleetwave/backend/pkg/response"
)

// ReminderHandler 提醒模块 HTTP 处理器
type ReminderHandler struct {
	reminderSvc service.ReminderService
}

// NewReminderHandler 创建 ReminderHandler
func NewReminderHandler(reminderSvc service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderSvc: reminderSvc}
}

// Dispatch 派发提醒
// POST /api/v1/reminders/dispatch?date=
func (h *ReminderHandler) Dispatch(c *gin.Context) {
	var req dto.ReminderDispatchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reminderSvc.Dispatch(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDate) {
			response.BadRequest(c, 10001, "日期格式错误")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}
