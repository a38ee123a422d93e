package handler

import "fleetwave/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Driver     *DriverHandler
	RentReport *RentReportHandler
	Adjustment *AdjustmentHandler
	RentStatus *RentStatusHandler
	Reminder   *ReminderHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Driver:     NewDriverHandler(svc.Driver),
		RentReport: NewRentReportHandler(svc.RentReport),
		Adjustment: NewAdjustmentHandler(svc.Adjustment),
		RentStatus: NewRentStatusHandler(svc.RentStatus, svc.Calendar),
		Reminder:   NewReminderHandler(svc.Reminder),
		Export:     NewExportHandler(svc.Export),
	}
}
