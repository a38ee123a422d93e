package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/service"
	pkgerrors "fleetwave/backend/pkg/errors"
	"fleetwave/backend/pkg/response"
)

// DriverHandler 司机模块 HTTP 处理器
type DriverHandler struct {
	driverSvc service.DriverService
}

// NewDriverHandler 创建 DriverHandler
func NewDriverHandler(driverSvc service.DriverService) *DriverHandler {
	return &DriverHandler{driverSvc: driverSvc}
}

// ListDrivers 司机列表
// GET /api/v1/drivers
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	var req dto.DriverListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.driverSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetDriver 司机详情
// GET /api/v1/drivers/:id
func (h *DriverHandler) GetDriver(c *gin.Context) {
	id := c.Param("id")
	if !MustAccessDriver(c, id) {
		return
	}

	driver, err := h.driverSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDriverError(c, err)
		return
	}

	response.OK(c, driver)
}

// CreateDriver 创建司机
// POST /api/v1/drivers
func (h *DriverHandler) CreateDriver(c *gin.Context) {
	var req dto.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	driver, err := h.driverSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleDriverError(c, err)
		return
	}

	response.Created(c, driver)
}

// UpdateDriver 更新司机
// PUT /api/v1/drivers/:id
func (h *DriverHandler) UpdateDriver(c *gin.Context) {
	id := c.Param("id")

	var req dto.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	driver, err := h.driverSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleDriverError(c, err)
		return
	}

	response.OK(c, driver)
}

// SetOnline 上下线切换
// PUT /api/v1/drivers/:id/online
func (h *DriverHandler) SetOnline(c *gin.Context) {
	id := c.Param("id")

	var req dto.SetOnlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	driver, err := h.driverSvc.SetOnline(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleDriverError(c, err)
		return
	}

	response.OK(c, driver)
}

// DeleteDriver 删除已下线司机
// DELETE /api/v1/drivers/:id
func (h *DriverHandler) DeleteDriver(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.driverSvc.Delete(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleDriverError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleDriverError 统一处理司机模块业务错误
func (h *DriverHandler) handleDriverError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDriverNotFound):
		response.NotFound(c, 20001, "司机不存在")
	case errors.Is(err, service.ErrDriverPhoneExists):
		response.Conflict(c, 20002, "该手机号已被其他司机使用")
	case errors.Is(err, service.ErrDriverStatusUnchanged):
		response.BadRequest(c, 20003, "司机在线状态未发生变化")
	case errors.Is(err, service.ErrDriverStillOnline):
		response.Conflict(c, 20004, "司机仍在线，请先下线再删除")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式错误")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10009, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
