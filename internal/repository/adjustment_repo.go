package repository

import (
	"context"

	"gorm.io/gorm"

	"fleetwave/backend/internal/model"
	pkgerrors "fleetwave/backend/pkg/errors"
)

// AdjustmentRepository 财务调整数据访问接口
type AdjustmentRepository interface {
	Create(ctx context.Context, adj *model.Adjustment) error
	GetByID(ctx context.Context, id string) (*model.Adjustment, error)
	ListByReport(ctx context.Context, reportID string) ([]model.Adjustment, error)
	// ApprovedReportIDs 返回给定报告中挂有已审批调整的报告 ID 集合
	ApprovedReportIDs(ctx context.Context, reportIDs []string) (map[string]bool, error)
	// Resolve 将 pending 调整改为审批结果；记录已不是 pending 时返回 ErrOptimisticLock
	Resolve(ctx context.Context, adj *model.Adjustment) error
}

type adjustmentRepo struct {
	db *gorm.DB
}

// NewAdjustmentRepo 创建 AdjustmentRepository 实例
func NewAdjustmentRepo(db *gorm.DB) AdjustmentRepository {
	return &adjustmentRepo{db: db}
}

func (r *adjustmentRepo) Create(ctx context.Context, adj *model.Adjustment) error {
	return r.db.WithContext(ctx).Create(adj).Error
}

func (r *adjustmentRepo) GetByID(ctx context.Context, id string) (*model.Adjustment, error) {
	var adj model.Adjustment
	err := r.db.WithContext(ctx).Where("adjustment_id = ?", id).First(&adj).Error
	if err != nil {
		return nil, err
	}
	return &adj, nil
}

func (r *adjustmentRepo) ListByReport(ctx context.Context, reportID string) ([]model.Adjustment, error) {
	var adjs []model.Adjustment
	err := r.db.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&adjs).Error
	return adjs, err
}

func (r *adjustmentRepo) ApprovedReportIDs(ctx context.Context, reportIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(reportIDs) == 0 {
		return result, nil
	}

	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Adjustment{}).
		Distinct("report_id").
		Where("report_id IN ? AND status = ?", reportIDs, adjustmentApproved).
		Pluck("report_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *adjustmentRepo) Resolve(ctx context.Context, adj *model.Adjustment) error {
	result := r.db.WithContext(ctx).
		Model(adj).
		Where("adjustment_id = ? AND status = ?", adj.AdjustmentID, adjustmentPending).
		Updates(map[string]interface{}{
			"status":      adj.Status,
			"approved_at": adj.ApprovedAt,
			"approved_by": adj.ApprovedBy,
			"updated_by":  adj.UpdatedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

const (
	adjustmentPending  = "pending"
	adjustmentApproved = "approved"
)
