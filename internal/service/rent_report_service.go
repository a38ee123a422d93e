package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetwave/backend/config"
	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/model"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
)

// ── 租金报告模块业务错误 ──

var (
	ErrReportNotFound          = errors.New("租金报告不存在")
	ErrReportBeforeJoining     = errors.New("报告日期早于司机入职日期")
	ErrReportInFuture          = errors.New("不能提交未来日期的报告")
	ErrReportAlreadySettled    = errors.New("该日期租金已结清")
	ErrReportInvalidTransition = errors.New("当前报告状态不允许该操作")
)

// RentReportService 租金报告业务接口
type RentReportService interface {
	// Submit 司机提交某日租金，生成待审核报告
	Submit(ctx context.Context, req *dto.SubmitRentReportRequest, callerID string) (*dto.RentReportResponse, error)
	// MarkLeave 登记某日请假
	MarkLeave(ctx context.Context, req *dto.MarkLeaveRequest, callerID string) (*dto.RentReportResponse, error)
	Approve(ctx context.Context, id string, callerID string) (*dto.RentReportResponse, error)
	Reject(ctx context.Context, id string, req *dto.RejectRentReportRequest, callerID string) (*dto.RentReportResponse, error)
	ListByDriver(ctx context.Context, req *dto.RentReportListRequest) ([]dto.RentReportResponse, error)
	// GetOwner 返回报告所属司机 ID（供 Handler 做归属校验）
	GetOwner(ctx context.Context, id string) (string, error)
}

type rentReportService struct {
	cfg       *config.RentConfig
	repo      *repository.Repository
	engine    *rentstatus.Engine
	onChanged func(ctx context.Context, driverID string)
	logger    *zap.Logger
}

// NewRentReportService 创建 RentReportService 实例
func NewRentReportService(cfg *config.RentConfig, repo *repository.Repository, engine *rentstatus.Engine, onChanged func(ctx context.Context, driverID string), logger *zap.Logger) RentReportService {
	return &rentReportService{cfg: cfg, repo: repo, engine: engine, onChanged: onChanged, logger: logger}
}

// ────────────────────── Submit ──────────────────────

func (s *rentReportService) Submit(ctx context.Context, req *dto.SubmitRentReportRequest, callerID string) (*dto.RentReportResponse, error) {
	date, err := s.checkDate(ctx, req.DriverID, req.RentDate)
	if err != nil {
		return nil, err
	}

	report := &model.RentReport{
		DriverID:      req.DriverID,
		RentDate:      storeDate(date),
		Status:        string(rentstatus.ReportPendingVerification),
		Amount:        req.Amount,
		ScreenshotURL: req.ScreenshotURL,
		SubmittedAt:   s.engine.Now().UTC(),
	}
	return s.create(ctx, report, callerID)
}

// ────────────────────── MarkLeave ──────────────────────

func (s *rentReportService) MarkLeave(ctx context.Context, req *dto.MarkLeaveRequest, callerID string) (*dto.RentReportResponse, error) {
	date, err := s.parseAndCheckJoining(ctx, req.DriverID, req.RentDate)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNotSettled(ctx, req.DriverID, date); err != nil {
		return nil, err
	}

	report := &model.RentReport{
		DriverID:    req.DriverID,
		RentDate:    storeDate(date),
		Status:      string(rentstatus.ReportLeave),
		SubmittedAt: s.engine.Now().UTC(),
	}
	return s.create(ctx, report, callerID)
}

// ────────────────────── Approve / Reject ──────────────────────

func (s *rentReportService) Approve(ctx context.Context, id string, callerID string) (*dto.RentReportResponse, error) {
	return s.review(ctx, id, rentstatus.ReportPaid, "", callerID)
}

func (s *rentReportService) Reject(ctx context.Context, id string, req *dto.RejectRentReportRequest, callerID string) (*dto.RentReportResponse, error) {
	return s.review(ctx, id, rentstatus.ReportRejected, req.Reason, callerID)
}

func (s *rentReportService) review(ctx context.Context, id string, to rentstatus.ReportStatus, reason, callerID string) (*dto.RentReportResponse, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch rentstatus.ReportStatus(report.Status) {
	case rentstatus.ReportPending, rentstatus.ReportPendingVerification:
	default:
		return nil, ErrReportInvalidTransition
	}

	now := s.engine.Now().UTC()
	report.Status = string(to)
	report.RejectReason = reason
	report.ReviewedAt = &now
	report.ReviewedBy = &callerID
	report.UpdatedBy = &callerID

	if err := s.repo.RentReport.Update(ctx, report); err != nil {
		s.logger.Error("审核租金报告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("租金报告已审核",
		zap.String("report_id", report.ReportID),
		zap.String("driver_id", report.DriverID),
		zap.String("status", report.Status),
	)
	s.notifyChanged(ctx, report.DriverID)
	return toRentReportResponse(report), nil
}

// ────────────────────── ListByDriver ──────────────────────

func (s *rentReportService) ListByDriver(ctx context.Context, req *dto.RentReportListRequest) ([]dto.RentReportResponse, error) {
	if _, err := s.repo.Driver.GetByID(ctx, req.DriverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		s.logger.Error("查询司机失败", zap.String("driver_id", req.DriverID), zap.Error(err))
		return nil, err
	}

	from, to, err := resolveRange(s.engine, &req.DateRangeRequest, s.cfg.DefaultWindowDays, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	reports, err := s.repo.RentReport.ListByDriver(ctx, req.DriverID, from, to)
	if err != nil {
		s.logger.Error("列出租金报告失败", zap.String("driver_id", req.DriverID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.RentReportResponse, 0, len(reports))
	for i := range reports {
		if req.Status != "" && reports[i].Status != req.Status {
			continue
		}
		result = append(result, *toRentReportResponse(&reports[i]))
	}
	return result, nil
}

// ────────────────────── GetOwner ──────────────────────

func (s *rentReportService) GetOwner(ctx context.Context, id string) (string, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	return report.DriverID, nil
}

// ── 内部辅助方法 ──

// checkDate 提交日期校验：不早于入职、不晚于今天、当天未结清
func (s *rentReportService) checkDate(ctx context.Context, driverID, raw string) (time.Time, error) {
	date, err := s.parseAndCheckJoining(ctx, driverID, raw)
	if err != nil {
		return time.Time{}, err
	}
	if date.After(s.engine.Today()) {
		return time.Time{}, ErrReportInFuture
	}
	if err := s.ensureNotSettled(ctx, driverID, date); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

func (s *rentReportService) parseAndCheckJoining(ctx context.Context, driverID, raw string) (time.Time, error) {
	date, err := s.engine.ParseDate(raw)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	driver, err := s.repo.Driver.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, ErrDriverNotFound
		}
		s.logger.Error("查询司机失败", zap.String("driver_id", driverID), zap.Error(err))
		return time.Time{}, err
	}
	if driver.JoiningDate != nil && date.Before(s.engine.Date(*driver.JoiningDate)) {
		return time.Time{}, ErrReportBeforeJoining
	}
	return date, nil
}

// ensureNotSettled 当天被采用的报告已是 paid 时拒绝再次提交
func (s *rentReportService) ensureNotSettled(ctx context.Context, driverID string, date time.Time) error {
	rows, err := s.repo.RentReport.ListByDriver(ctx, driverID, date, date)
	if err != nil {
		s.logger.Error("查询当日报告失败", zap.String("driver_id", driverID), zap.Error(err))
		return err
	}

	records := make([]rentstatus.ReportRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rentstatus.ReportRecord{
			ReportID:    rows[i].ReportID,
			DriverID:    rows[i].DriverID,
			RentDate:    s.engine.Date(rows[i].RentDate),
			Status:      rentstatus.ReportStatus(rows[i].Status),
			SubmittedAt: rows[i].SubmittedAt,
		})
	}
	if latest := rentstatus.PickReport(date, records); latest != nil && latest.Status == rentstatus.ReportPaid {
		return ErrReportAlreadySettled
	}
	return nil
}

func (s *rentReportService) create(ctx context.Context, report *model.RentReport, callerID string) (*dto.RentReportResponse, error) {
	report.CreatedBy = &callerID
	report.UpdatedBy = &callerID

	if err := s.repo.RentReport.Create(ctx, report); err != nil {
		s.logger.Error("创建租金报告失败", zap.String("driver_id", report.DriverID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("租金报告已创建",
		zap.String("report_id", report.ReportID),
		zap.String("driver_id", report.DriverID),
		zap.String("rent_date", rentstatus.FormatDate(report.RentDate)),
		zap.String("status", report.Status),
	)
	s.notifyChanged(ctx, report.DriverID)
	return toRentReportResponse(report), nil
}

func (s *rentReportService) load(ctx context.Context, id string) (*model.RentReport, error) {
	report, err := s.repo.RentReport.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReportNotFound
		}
		s.logger.Error("查询租金报告失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return report, nil
}

func (s *rentReportService) notifyChanged(ctx context.Context, driverID string) {
	if s.onChanged != nil {
		s.onChanged(ctx, driverID)
	}
}

func toRentReportResponse(r *model.RentReport) *dto.RentReportResponse {
	return &dto.RentReportResponse{
		ID:            r.ReportID,
		DriverID:      r.DriverID,
		RentDate:      rentstatus.FormatDate(r.RentDate),
		Status:        r.Status,
		Amount:        r.Amount,
		ScreenshotURL: r.ScreenshotURL,
		RejectReason:  r.RejectReason,
		SubmittedAt:   r.SubmittedAt.UTC().Format(timestampLayout),
		ReviewedAt:    formatTimePtr(r.ReviewedAt),
		Version:       r.Version,
	}
}
