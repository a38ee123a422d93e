package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/service"
	pkgerrors "fleetwave/backend/pkg/errors"
	"fleetwave/backend/pkg/response"
)

// RentReportHandler 租金报告模块 HTTP 处理器
type RentReportHandler struct {
	reportSvc service.RentReportService
}

// NewRentReportHandler 创建 RentReportHandler
func NewRentReportHandler(reportSvc service.RentReportService) *RentReportHandler {
	return &RentReportHandler{reportSvc: reportSvc}
}

// SubmitReport 提交租金报告（司机本人或管理员代提交）
// POST /api/v1/rent-reports
func (h *RentReportHandler) SubmitReport(c *gin.Context) {
	var req dto.SubmitRentReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if !MustAccessDriver(c, req.DriverID) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Submit(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.Created(c, report)
}

// MarkLeave 登记请假
// POST /api/v1/rent-reports/leave
func (h *RentReportHandler) MarkLeave(c *gin.Context) {
	var req dto.MarkLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if !MustAccessDriver(c, req.DriverID) {
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.MarkLeave(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.Created(c, report)
}

// ListReports 司机报告列表
// GET /api/v1/rent-reports?driver_id=&from=&to=
func (h *RentReportHandler) ListReports(c *gin.Context) {
	var req dto.RentReportListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if !MustAccessDriver(c, req.DriverID) {
		return
	}

	list, err := h.reportSvc.ListByDriver(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ApproveReport 审核通过
// PUT /api/v1/rent-reports/:id/approve
func (h *RentReportHandler) ApproveReport(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Approve(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// RejectReport 驳回
// PUT /api/v1/rent-reports/:id/reject
func (h *RentReportHandler) RejectReport(c *gin.Context) {
	var req dto.RejectRentReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.reportSvc.Reject(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// handleReportError 统一处理租金报告模块业务错误
func (h *RentReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 21001, "租金报告不存在")
	case errors.Is(err, service.ErrDriverNotFound):
		response.NotFound(c, 20001, "司机不存在")
	case errors.Is(err, service.ErrReportBeforeJoining):
		response.BadRequest(c, 21002, "报告日期早于司机入职日期")
	case errors.Is(err, service.ErrReportInFuture):
		response.BadRequest(c, 21003, "不能提交未来日期的报告")
	case errors.Is(err, service.ErrReportAlreadySettled):
		response.Conflict(c, 21004, "该日期租金已结清")
	case errors.Is(err, service.ErrReportInvalidTransition):
		response.Conflict(c, 21005, "当前报告状态不允许该操作")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式错误")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 23001, "日期区间无效")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10009, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
