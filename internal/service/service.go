package service

import (
	"context"

	"go.uber.org/zap"

	"fleetwave/backend/config"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
	"fleetwave/backend/pkg/notify"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Driver     DriverService
	RentReport RentReportService
	Adjustment AdjustmentService
	RentStatus RentStatusService
	Reminder   ReminderService
	Export     ExportService
	Calendar   CalendarService
}

// NewService 创建 Service 聚合。cache 为 nil 时拦截汇总不做缓存。
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *rentstatus.Engine,
	cache BlockingCache,
	publisher notify.Publisher,
	logger *zap.Logger,
) *Service {
	status := NewRentStatusService(&cfg.Rent, repo, engine, cache, logger)
	invalidate := func(ctx context.Context, driverID string) { status.Invalidate(ctx, driverID) }

	return &Service{
		Driver:     NewDriverService(repo, engine, invalidate, logger),
		RentReport: NewRentReportService(&cfg.Rent, repo, engine, invalidate, logger),
		Adjustment: NewAdjustmentService(repo, engine, invalidate, logger),
		RentStatus: status,
		Reminder:   NewReminderService(repo, engine, publisher, logger),
		Export:     NewExportService(status, logger),
		Calendar:   NewCalendarService(&cfg.Rent, repo, engine, logger),
	}
}
