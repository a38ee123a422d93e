package dto

// ── 租金状态模块 DTO ──

// RentStatusRequest 单日状态查询参数
type RentStatusRequest struct {
	Date string `form:"date" binding:"omitempty,ymd"` // 为空取今天
}

// ReminderDispatchRequest 提醒派发参数
type ReminderDispatchRequest struct {
	Date string `form:"date" binding:"omitempty,ymd"`
}

// DayStatusResponse 单日状态
type DayStatusResponse struct {
	Date     string  `json:"date"`
	Status   string  `json:"status"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
	Deadline *string `json:"deadline"`
	ReportID *string `json:"report_id,omitempty"`
}

// RentCalendarResponse 司机日历
type RentCalendarResponse struct {
	DriverID      string              `json:"driver_id"`
	From          string              `json:"from"`
	To            string              `json:"to"`
	Days          []DayStatusResponse `json:"days"`
	Counts        map[string]int      `json:"counts"`
	OverdueCount  int                 `json:"overdue_count"`
	RejectedCount int                 `json:"rejected_count"`
}

// BlockingResponse 拦截判断结果
type BlockingResponse struct {
	DriverID      string `json:"driver_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	OverdueCount  int    `json:"overdue_count"`
	RejectedCount int    `json:"rejected_count"`
	Blocked       bool   `json:"blocked"`
}

// FleetGridRow 车队网格中一名司机的一行
type FleetGridRow struct {
	Driver        DriverBrief         `json:"driver"`
	Days          []DayStatusResponse `json:"days"`
	OverdueCount  int                 `json:"overdue_count"`
	RejectedCount int                 `json:"rejected_count"`
}

// FleetGridResponse 车队 N × 天数网格
type FleetGridResponse struct {
	From  string         `json:"from"`
	To    string         `json:"to"`
	Dates []string       `json:"dates"`
	Rows  []FleetGridRow `json:"rows"`
}

// ReminderDispatchResponse 提醒派发结果
type ReminderDispatchResponse struct {
	Date      string         `json:"date"`
	Checked   int            `json:"checked"`
	Published int            `json:"published"`
	ByStatus  map[string]int `json:"by_status"`
}
