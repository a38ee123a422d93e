package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/model"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
	pkgerrors "fleetwave/backend/pkg/errors"
)

// ── 财务调整模块业务错误 ──

var (
	ErrAdjustmentNotFound          = errors.New("财务调整不存在")
	ErrAdjustmentInvalidTransition = errors.New("调整已处理，不能重复审批")
)

// 调整状态
const (
	AdjustmentPending  = "pending"
	AdjustmentApproved = "approved"
	AdjustmentRejected = "rejected"
)

// AdjustmentService 财务调整业务接口。
// 已审批的调整挂在已结清报告上时，该日展示为 paid_with_adjustment。
type AdjustmentService interface {
	Create(ctx context.Context, req *dto.CreateAdjustmentRequest, callerID string) (*dto.AdjustmentResponse, error)
	Approve(ctx context.Context, id string, callerID string) (*dto.AdjustmentResponse, error)
	Reject(ctx context.Context, id string, callerID string) (*dto.AdjustmentResponse, error)
	// ListByReport 报告下的全部调整，按创建时间升序
	ListByReport(ctx context.Context, reportID string) ([]dto.AdjustmentResponse, error)
}

type adjustmentService struct {
	repo      *repository.Repository
	engine    *rentstatus.Engine
	onChanged func(ctx context.Context, driverID string)
	logger    *zap.Logger
}

// NewAdjustmentService 创建 AdjustmentService 实例
func NewAdjustmentService(repo *repository.Repository, engine *rentstatus.Engine, onChanged func(ctx context.Context, driverID string), logger *zap.Logger) AdjustmentService {
	return &adjustmentService{repo: repo, engine: engine, onChanged: onChanged, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *adjustmentService) Create(ctx context.Context, req *dto.CreateAdjustmentRequest, callerID string) (*dto.AdjustmentResponse, error) {
	report, err := s.repo.RentReport.GetByID(ctx, req.ReportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询租金报告失败", zap.String("report_id", req.ReportID), zap.Error(err))
		return nil, err
	}

	adj := &model.Adjustment{
		ReportID: report.ReportID,
		DriverID: report.DriverID,
		Type:     req.Type,
		Amount:   req.Amount,
		Note:     req.Note,
		Status:   AdjustmentPending,
	}
	adj.CreatedBy = &callerID
	adj.UpdatedBy = &callerID

	if err := s.repo.Adjustment.Create(ctx, adj); err != nil {
		s.logger.Error("创建财务调整失败", zap.Error(err))
		return nil, err
	}

	return toAdjustmentResponse(adj), nil
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *adjustmentService) Approve(ctx context.Context, id string, callerID string) (*dto.AdjustmentResponse, error) {
	return s.resolve(ctx, id, AdjustmentApproved, callerID)
}

func (s *adjustmentService) Reject(ctx context.Context, id string, callerID string) (*dto.AdjustmentResponse, error) {
	return s.resolve(ctx, id, AdjustmentRejected, callerID)
}

func (s *adjustmentService) resolve(ctx context.Context, id, status, callerID string) (*dto.AdjustmentResponse, error) {
	adj, err := s.repo.Adjustment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdjustmentNotFound
		}
		s.logger.Error("查询财务调整失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if adj.Status != AdjustmentPending {
		return nil, ErrAdjustmentInvalidTransition
	}

	now := s.engine.Now().UTC()
	adj.Status = status
	adj.ApprovedAt = &now
	adj.ApprovedBy = &callerID
	adj.UpdatedBy = &callerID

	if err := s.repo.Adjustment.Resolve(ctx, adj); err != nil {
		// 另一位管理员已先处理
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrAdjustmentInvalidTransition
		}
		s.logger.Error("更新财务调整失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("财务调整已处理",
		zap.String("adjustment_id", adj.AdjustmentID),
		zap.String("report_id", adj.ReportID),
		zap.String("status", status),
	)
	if s.onChanged != nil {
		s.onChanged(ctx, adj.DriverID)
	}
	return toAdjustmentResponse(adj), nil
}

// ────────────────────── ListByReport ──────────────────────

func (s *adjustmentService) ListByReport(ctx context.Context, reportID string) ([]dto.AdjustmentResponse, error) {
	if _, err := s.repo.RentReport.GetByID(ctx, reportID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询租金报告失败", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	adjs, err := s.repo.Adjustment.ListByReport(ctx, reportID)
	if err != nil {
		s.logger.Error("列出财务调整失败", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AdjustmentResponse, 0, len(adjs))
	for i := range adjs {
		result = append(result, *toAdjustmentResponse(&adjs[i]))
	}
	return result, nil
}

func toAdjustmentResponse(a *model.Adjustment) *dto.AdjustmentResponse {
	return &dto.AdjustmentResponse{
		ID:         a.AdjustmentID,
		ReportID:   a.ReportID,
		DriverID:   a.DriverID,
		Type:       a.Type,
		Amount:     a.Amount,
		Note:       a.Note,
		Status:     a.Status,
		ApprovedAt: formatTimePtr(a.ApprovedAt),
		CreatedAt:  a.CreatedAt.UTC().Format(timestampLayout),
	}
}
