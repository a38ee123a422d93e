package dto

// ── 租金报告模块 DTO ──

// SubmitRentReportRequest 提交租金报告请求
type SubmitRentReportRequest struct {
	DriverID      string  `json:"driver_id"      binding:"required,uuid"`
	RentDate      string  `json:"rent_date"      binding:"required,ymd"`
	Amount        float64 `json:"amount"         binding:"required,gt=0"`
	ScreenshotURL string  `json:"screenshot_url" binding:"omitempty,url,max=500"`
}

// MarkLeaveRequest 请假登记请求
type MarkLeaveRequest struct {
	DriverID string `json:"driver_id" binding:"required,uuid"`
	RentDate string `json:"rent_date" binding:"required,ymd"`
}

// RejectRentReportRequest 驳回报告请求
type RejectRentReportRequest struct {
	Reason string `json:"reason" binding:"required,min=2,max=500"`
}

// RentReportListRequest 报告列表查询参数
type RentReportListRequest struct {
	DriverID string `form:"driver_id" binding:"required,uuid"`
	Status   string `form:"status"    binding:"omitempty,rent_status"` // 为空不过滤
	DateRangeRequest
}

// RentReportResponse 租金报告响应
type RentReportResponse struct {
	ID            string  `json:"id"`
	DriverID      string  `json:"driver_id"`
	RentDate      string  `json:"rent_date"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	ScreenshotURL string  `json:"screenshot_url,omitempty"`
	RejectReason  string  `json:"reject_reason,omitempty"`
	SubmittedAt   string  `json:"submitted_at"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
	Version       int     `json:"version"`
}
