package dto

// ── 财务调整模块 DTO ──

// CreateAdjustmentRequest 创建调整请求
type CreateAdjustmentRequest struct {
	ReportID string  `json:"report_id" binding:"required,uuid"`
	Type     string  `json:"type"      binding:"required,oneof=bonus penalty refund"`
	Amount   float64 `json:"amount"    binding:"required,gt=0"`
	Note     string  `json:"note"      binding:"omitempty,max=500"`
}

// AdjustmentResponse 调整响应
type AdjustmentResponse struct {
	ID         string  `json:"id"`
	ReportID   string  `json:"report_id"`
	DriverID   string  `json:"driver_id"`
	Type       string  `json:"type"`
	Amount     float64 `json:"amount"`
	Note       string  `json:"note,omitempty"`
	Status     string  `json:"status"`
	ApprovedAt *string `json:"approved_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
