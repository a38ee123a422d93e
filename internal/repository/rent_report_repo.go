package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"fleetwave/backend/internal/model"
	pkgerrors "fleetwave/backend/pkg/errors"
)

// RentReportRepository 租金报告数据访问接口
type RentReportRepository interface {
	Create(ctx context.Context, report *model.RentReport) error
	GetByID(ctx context.Context, id string) (*model.RentReport, error)
	// ListByDriver 按司机与日期闭区间查询，按 rent_date、submitted_at 升序
	ListByDriver(ctx context.Context, driverID string, from, to time.Time) ([]model.RentReport, error)
	// ListByRange 全部司机在日期闭区间内的报告
	ListByRange(ctx context.Context, from, to time.Time) ([]model.RentReport, error)
	Update(ctx context.Context, report *model.RentReport) error
}

type rentReportRepo struct {
	db *gorm.DB
}

// NewRentReportRepo 创建 RentReportRepository 实例
func NewRentReportRepo(db *gorm.DB) RentReportRepository {
	return &rentReportRepo{db: db}
}

func (r *rentReportRepo) Create(ctx context.Context, report *model.RentReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *rentReportRepo) GetByID(ctx context.Context, id string) (*model.RentReport, error) {
	var report model.RentReport
	err := r.db.WithContext(ctx).
		Preload("Driver").
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *rentReportRepo) ListByDriver(ctx context.Context, driverID string, from, to time.Time) ([]model.RentReport, error) {
	var reports []model.RentReport
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND rent_date BETWEEN ? AND ?", driverID, dateArg(from), dateArg(to)).
		Order("rent_date ASC, submitted_at ASC").
		Find(&reports).Error
	return reports, err
}

func (r *rentReportRepo) ListByRange(ctx context.Context, from, to time.Time) ([]model.RentReport, error) {
	var reports []model.RentReport
	err := r.db.WithContext(ctx).
		Where("rent_date BETWEEN ? AND ?", dateArg(from), dateArg(to)).
		Order("driver_id ASC, rent_date ASC, submitted_at ASC").
		Find(&reports).Error
	return reports, err
}

func (r *rentReportRepo) Update(ctx context.Context, report *model.RentReport) error {
	oldVersion := report.Version
	result := r.db.WithContext(ctx).
		Model(report).
		Where("report_id = ? AND version = ?", report.ReportID, oldVersion).
		Updates(map[string]interface{}{
			"status":        report.Status,
			"amount":        report.Amount,
			"reject_reason": report.RejectReason,
			"reviewed_at":   report.ReviewedAt,
			"reviewed_by":   report.ReviewedBy,
			"updated_by":    report.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version = oldVersion + 1
	return nil
}

// dateArg date 列比较统一使用 YYYY-MM-DD 文本，避免时区换算把日期挪到前一天
func dateArg(t time.Time) string {
	return t.Format("2006-01-02")
}
