package dto

// ── 司机模块 DTO ──

// CreateDriverRequest 创建司机请求
type CreateDriverRequest struct {
	Name          string `json:"name"           binding:"required,min=2,max=100"`
	Phone         string `json:"phone"          binding:"required,min=6,max=20"`
	VehicleNumber string `json:"vehicle_number" binding:"omitempty,max=20"`
	Shift         string `json:"shift"          binding:"required,rent_shift"`
	JoiningDate   string `json:"joining_date"   binding:"omitempty,ymd"`
}

// UpdateDriverRequest 更新司机请求
type UpdateDriverRequest struct {
	Name          *string `json:"name"           binding:"omitempty,min=2,max=100"`
	Phone         *string `json:"phone"          binding:"omitempty,min=6,max=20"`
	VehicleNumber *string `json:"vehicle_number" binding:"omitempty,max=20"`
	Shift         *string `json:"shift"          binding:"omitempty,rent_shift"`
	JoiningDate   *string `json:"joining_date"   binding:"omitempty,ymd"`
}

// SetOnlineRequest 上下线切换请求
type SetOnlineRequest struct {
	Online        *bool  `json:"online"         binding:"required"`
	EffectiveDate string `json:"effective_date" binding:"omitempty,ymd"` // 为空取今天
}

// DriverListRequest 司机列表查询参数
type DriverListRequest struct {
	PaginationRequest
	Shift   string `form:"shift"   binding:"omitempty,rent_shift"`
	Online  *bool  `form:"online"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// DriverResponse 司机信息响应
type DriverResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	VehicleNumber   string  `json:"vehicle_number,omitempty"`
	Shift           string  `json:"shift"`
	JoiningDate     *string `json:"joining_date"`
	Online          bool    `json:"online"`
	OfflineFromDate *string `json:"offline_from_date"`
	OnlineFromDate  *string `json:"online_from_date"`
	Version         int     `json:"version"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
