package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/model"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
)

// ── 司机模块业务错误 ──

var (
	ErrDriverNotFound        = errors.New("司机不存在")
	ErrDriverPhoneExists     = errors.New("该手机号已被其他司机使用")
	ErrDriverStatusUnchanged = errors.New("司机在线状态未发生变化")
	ErrDriverStillOnline     = errors.New("司机仍在线，请先下线再删除")
	ErrInvalidDate           = errors.New("日期格式错误，应为 YYYY-MM-DD")
)

// DriverService 司机业务接口
type DriverService interface {
	Create(ctx context.Context, req *dto.CreateDriverRequest, callerID string) (*dto.DriverResponse, error)
	GetByID(ctx context.Context, id string) (*dto.DriverResponse, error)
	List(ctx context.Context, req *dto.DriverListRequest) ([]dto.DriverResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateDriverRequest, callerID string) (*dto.DriverResponse, error)
	// SetOnline 上下线切换：下线记录 offline_from_date，上线记录 online_from_date
	SetOnline(ctx context.Context, id string, req *dto.SetOnlineRequest, callerID string) (*dto.DriverResponse, error)
	// Delete 软删除已下线的司机；历史报告保留
	Delete(ctx context.Context, id string, callerID string) error
}

type driverService struct {
	repo      *repository.Repository
	engine    *rentstatus.Engine
	onChanged func(ctx context.Context, driverID string)
	logger    *zap.Logger
}

// NewDriverService 创建 DriverService 实例。
// onChanged 在生命周期字段变化后调用（用于失效拦截缓存），可为 nil。
func NewDriverService(repo *repository.Repository, engine *rentstatus.Engine, onChanged func(ctx context.Context, driverID string), logger *zap.Logger) DriverService {
	return &driverService{repo: repo, engine: engine, onChanged: onChanged, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *driverService) Create(ctx context.Context, req *dto.CreateDriverRequest, callerID string) (*dto.DriverResponse, error) {
	if err := s.ensurePhoneFree(ctx, req.Phone, ""); err != nil {
		return nil, err
	}

	driver := &model.Driver{
		Name:          req.Name,
		Phone:         req.Phone,
		VehicleNumber: req.VehicleNumber,
		Shift:         string(rentstatus.ParseShift(req.Shift)),
		Online:        true,
	}
	if req.JoiningDate != "" {
		d, err := s.engine.ParseDate(req.JoiningDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		jd := storeDate(d)
		driver.JoiningDate = &jd
	}
	driver.CreatedBy = &callerID
	driver.UpdatedBy = &callerID

	if err := s.repo.Driver.Create(ctx, driver); err != nil {
		s.logger.Error("创建司机失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("司机已创建", zap.String("driver_id", driver.DriverID), zap.String("shift", driver.Shift))
	return toDriverResponse(driver), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *driverService) GetByID(ctx context.Context, id string) (*dto.DriverResponse, error) {
	driver, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDriverResponse(driver), nil
}

// ────────────────────── List ──────────────────────

func (s *driverService) List(ctx context.Context, req *dto.DriverListRequest) ([]dto.DriverResponse, int64, error) {
	filter := repository.DriverFilter{
		Online:  req.Online,
		Keyword: req.Keyword,
	}
	if req.Shift != "" {
		filter.Shift = string(rentstatus.ParseShift(req.Shift))
	}

	drivers, total, err := s.repo.Driver.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出司机失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.DriverResponse, 0, len(drivers))
	for i := range drivers {
		result = append(result, *toDriverResponse(&drivers[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *driverService) Update(ctx context.Context, id string, req *dto.UpdateDriverRequest, callerID string) (*dto.DriverResponse, error) {
	driver, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		driver.Name = *req.Name
	}
	if req.Phone != nil && *req.Phone != driver.Phone {
		if err := s.ensurePhoneFree(ctx, *req.Phone, driver.DriverID); err != nil {
			return nil, err
		}
		driver.Phone = *req.Phone
	}
	if req.VehicleNumber != nil {
		driver.VehicleNumber = *req.VehicleNumber
	}
	if req.Shift != nil {
		driver.Shift = string(rentstatus.ParseShift(*req.Shift))
	}
	if req.JoiningDate != nil {
		if *req.JoiningDate == "" {
			driver.JoiningDate = nil
		} else {
			d, err := s.engine.ParseDate(*req.JoiningDate)
			if err != nil {
				return nil, ErrInvalidDate
			}
			jd := storeDate(d)
			driver.JoiningDate = &jd
		}
	}
	driver.UpdatedBy = &callerID

	if err := s.repo.Driver.Update(ctx, driver); err != nil {
		s.logger.Error("更新司机失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.notifyChanged(ctx, driver.DriverID)
	return toDriverResponse(driver), nil
}

// ────────────────────── SetOnline ──────────────────────

func (s *driverService) SetOnline(ctx context.Context, id string, req *dto.SetOnlineRequest, callerID string) (*dto.DriverResponse, error) {
	driver, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	online := *req.Online
	if driver.Online == online {
		return nil, ErrDriverStatusUnchanged
	}

	effective := s.engine.Today()
	if req.EffectiveDate != "" {
		if effective, err = s.engine.ParseDate(req.EffectiveDate); err != nil {
			return nil, ErrInvalidDate
		}
	}
	date := storeDate(effective)

	driver.Online = online
	if online {
		driver.OnlineFromDate = &date
	} else {
		driver.OfflineFromDate = &date
	}
	driver.UpdatedBy = &callerID

	if err := s.repo.Driver.Update(ctx, driver); err != nil {
		s.logger.Error("切换司机在线状态失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("司机在线状态已切换",
		zap.String("driver_id", driver.DriverID),
		zap.Bool("online", online),
		zap.String("effective_date", rentstatus.FormatDate(effective)),
	)
	s.notifyChanged(ctx, driver.DriverID)
	return toDriverResponse(driver), nil
}

// ────────────────────── Delete ──────────────────────

func (s *driverService) Delete(ctx context.Context, id string, callerID string) error {
	driver, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if driver.Online {
		return ErrDriverStillOnline
	}

	if err := s.repo.Driver.Delete(ctx, driver.DriverID, callerID); err != nil {
		s.logger.Error("删除司机失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("司机已删除", zap.String("driver_id", driver.DriverID))
	s.notifyChanged(ctx, driver.DriverID)
	return nil
}

// ── 内部辅助方法 ──

func (s *driverService) load(ctx context.Context, id string) (*model.Driver, error) {
	driver, err := s.repo.Driver.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		s.logger.Error("查询司机失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return driver, nil
}

func (s *driverService) ensurePhoneFree(ctx context.Context, phone, selfID string) error {
	existing, err := s.repo.Driver.GetByPhone(ctx, phone)
	if err == nil && existing.DriverID != selfID {
		return ErrDriverPhoneExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("检查手机号失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *driverService) notifyChanged(ctx context.Context, driverID string) {
	if s.onChanged != nil {
		s.onChanged(ctx, driverID)
	}
}

func toDriverResponse(d *model.Driver) *dto.DriverResponse {
	return &dto.DriverResponse{
		ID:              d.DriverID,
		Name:            d.Name,
		Phone:           d.Phone,
		VehicleNumber:   d.VehicleNumber,
		Shift:           d.Shift,
		JoiningDate:     formatDatePtr(d.JoiningDate),
		Online:          d.Online,
		OfflineFromDate: formatDatePtr(d.OfflineFromDate),
		OnlineFromDate:  formatDatePtr(d.OnlineFromDate),
		Version:         d.Version,
		CreatedAt:       d.CreatedAt.Format(timestampLayout),
		UpdatedAt:       d.UpdatedAt.Format(timestampLayout),
	}
}

func toDriverBrief(d *model.Driver) dto.DriverBrief {
	return dto.DriverBrief{ID: d.DriverID, Name: d.Name, Phone: d.Phone, Shift: d.Shift}
}

// dateOrToday 解析可选日期参数，为空时取业务时区的今天
func dateOrToday(engine *rentstatus.Engine, s string) (time.Time, error) {
	if s == "" {
		return engine.Today(), nil
	}
	d, err := engine.ParseDate(s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}
