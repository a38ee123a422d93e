package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/service"
	"fleetwave/backend/pkg/response"
)

// RentStatusHandler 租金状态模块 HTTP 处理器
type RentStatusHandler struct {
	statusSvc   service.RentStatusService
	calendarSvc service.CalendarService
}

// NewRentStatusHandler 创建 RentStatusHandler
func NewRentStatusHandler(statusSvc service.RentStatusService, calendarSvc service.CalendarService) *RentStatusHandler {
	return &RentStatusHandler{statusSvc: statusSvc, calendarSvc: calendarSvc}
}

// GetCalendar 司机租金日历
// GET /api/v1/drivers/:id/rent-calendar?from=&to=
func (h *RentStatusHandler) GetCalendar(c *gin.Context) {
	id := c.Param("id")
	if !MustAccessDriver(c, id) {
		return
	}

	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	cal, err := h.statusSvc.GetCalendar(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStatusError(c, err)
		return
	}

	response.OK(c, cal)
}

// GetDayStatus 司机单日状态
// GET /api/v1/drivers/:id/rent-status?date=
func (h *RentStatusHandler) GetDayStatus(c *gin.Context) {
	id := c.Param("id")
	if !MustAccessDriver(c, id) {
		return
	}

	var req dto.RentStatusRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	day, err := h.statusSvc.GetDayStatus(c.Request.Context(), id, req.Date)
	if err != nil {
		h.handleStatusError(c, err)
		return
	}

	response.OK(c, day)
}

// GetBlocking 拦截判断
// GET /api/v1/drivers/:id/blocking
func (h *RentStatusHandler) GetBlocking(c *gin.Context) {
	id := c.Param("id")
	if !MustAccessDriver(c, id) {
		return
	}

	result, err := h.statusSvc.GetBlocking(c.Request.Context(), id)
	if err != nil {
		h.handleStatusError(c, err)
		return
	}

	response.OK(c, result)
}

// GetDeadlinesICS 截止时间 iCalendar 订阅
// GET /api/v1/drivers/:id/deadlines.ics?from=&to=
func (h *RentStatusHandler) GetDeadlinesICS(c *gin.Context) {
	id := c.Param("id")
	if !MustAccessDriver(c, id) {
		return
	}

	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	body, filename, err := h.calendarSvc.DriverDeadlinesICS(c.Request.Context(), id, &req)
	if err != nil {
		h.handleStatusError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// GetFleetGrid 车队网格
// GET /api/v1/rent/grid?from=&to=
func (h *RentStatusHandler) GetFleetGrid(c *gin.Context) {
	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	grid, err := h.statusSvc.GetFleetGrid(c.Request.Context(), &req)
	if err != nil {
		h.handleStatusError(c, err)
		return
	}

	response.OK(c, grid)
}

// handleStatusError 统一处理租金状态模块业务错误
func (h *RentStatusHandler) handleStatusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDriverNotFound):
		response.NotFound(c, 20001, "司机不存在")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.ErrorWithDetails(c, http.StatusBadRequest, 23001, "日期区间无效", err.Error())
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式错误")
	default:
		response.InternalError(c)
	}
}
