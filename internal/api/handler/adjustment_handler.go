package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/service"
	"fleetwave/backend/pkg/response"
)

// AdjustmentHandler 财务调整模块 HTTP 处理器
type AdjustmentHandler struct {
	adjustmentSvc service.AdjustmentService
}

// NewAdjustmentHandler 创建 AdjustmentHandler
func NewAdjustmentHandler(adjustmentSvc service.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{adjustmentSvc: adjustmentSvc}
}

// CreateAdjustment 创建调整
// POST /api/v1/adjustments
func (h *AdjustmentHandler) CreateAdjustment(c *gin.Context) {
	var req dto.CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	adj, err := h.adjustmentSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleAdjustmentError(c, err)
		return
	}

	response.Created(c, adj)
}

// ApproveAdjustment 审批调整
// PUT /api/v1/adjustments/:id/approve
func (h *AdjustmentHandler) ApproveAdjustment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	adj, err := h.adjustmentSvc.Approve(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleAdjustmentError(c, err)
		return
	}

	response.OK(c, adj)
}

// RejectAdjustment 驳回调整
// PUT /api/v1/adjustments/:id/reject
func (h *AdjustmentHandler) RejectAdjustment(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	adj, err := h.adjustmentSvc.Reject(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.handleAdjustmentError(c, err)
		return
	}

	response.OK(c, adj)
}

// ListReportAdjustments 报告下的调整列表
// GET /api/v1/rent-reports/:id/adjustments
func (h *AdjustmentHandler) ListReportAdjustments(c *gin.Context) {
	adjs, err := h.adjustmentSvc.ListByReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAdjustmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": adjs})
}

// handleAdjustmentError 统一处理财务调整模块业务错误
func (h *AdjustmentHandler) handleAdjustmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAdjustmentNotFound):
		response.NotFound(c, 22001, "财务调整不存在")
	case errors.Is(err, service.ErrReportNotFound):
		response.NotFound(c, 21001, "租金报告不存在")
	case errors.Is(err, service.ErrAdjustmentInvalidTransition):
		response.Conflict(c, 22002, "调整已处理，不能重复审批")
	default:
		response.InternalError(c)
	}
}
