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

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRentGrid 导出车队租金网格
// GET /api/v1/export/rent-grid?from=&to=
func (h *ExportHandler) ExportRentGrid(c *gin.Context) {
	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.ExportRentGrid(c.Request.Context(), &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoDrivers):
		response.NotFound(c, 24001, "暂无司机数据可导出")
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 23001, "日期区间无效")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10001, "日期格式错误")
	default:
		response.InternalError(c)
	}
}
