package repository

import (
	"context"

	"gorm.io/gorm"

	"fleetwave/backend/internal/model"
	pkgerrors "fleetwave/backend/pkg/errors"
)

// DriverFilter 司机列表筛选条件
type DriverFilter struct {
	Shift   string
	Online  *bool
	Keyword string // 姓名 / 手机号 / 车牌模糊匹配
}

// DriverRepository 司机数据访问接口
type DriverRepository interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByID(ctx context.Context, id string) (*model.Driver, error)
	GetByPhone(ctx context.Context, phone string) (*model.Driver, error)
	List(ctx context.Context, filter DriverFilter, offset, limit int) ([]model.Driver, int64, error)
	ListAll(ctx context.Context) ([]model.Driver, error)
	Update(ctx context.Context, driver *model.Driver) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type driverRepo struct {
	db *gorm.DB
}

// NewDriverRepo 创建 DriverRepository 实例
func NewDriverRepo(db *gorm.DB) DriverRepository {
	return &driverRepo{db: db}
}

func (r *driverRepo) Create(ctx context.Context, driver *model.Driver) error {
	return r.db.WithContext(ctx).Create(driver).Error
}

func (r *driverRepo) GetByID(ctx context.Context, id string) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).Where("driver_id = ?", id).First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepo) GetByPhone(ctx context.Context, phone string) (*model.Driver, error) {
	var driver model.Driver
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *driverRepo) List(ctx context.Context, filter DriverFilter, offset, limit int) ([]model.Driver, int64, error) {
	var drivers []model.Driver
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Driver{})
	if filter.Shift != "" {
		db = db.Where("shift = ?", filter.Shift)
	}
	if filter.Online != nil {
		db = db.Where("online = ?", *filter.Online)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("name ILIKE ? OR phone LIKE ? OR vehicle_number ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("name ASC").
		Find(&drivers).Error
	return drivers, total, err
}

func (r *driverRepo) ListAll(ctx context.Context) ([]model.Driver, error) {
	var drivers []model.Driver
	err := r.db.WithContext(ctx).Order("name ASC").Find(&drivers).Error
	return drivers, err
}

func (r *driverRepo) Update(ctx context.Context, driver *model.Driver) error {
	oldVersion := driver.Version
	result := r.db.WithContext(ctx).
		Model(driver).
		Where("driver_id = ? AND version = ?", driver.DriverID, oldVersion).
		Updates(map[string]interface{}{
			"name":              driver.Name,
			"phone":             driver.Phone,
			"vehicle_number":    driver.VehicleNumber,
			"shift":             driver.Shift,
			"joining_date":      driver.JoiningDate,
			"online":            driver.Online,
			"offline_from_date": driver.OfflineFromDate,
			"online_from_date":  driver.OnlineFromDate,
			"updated_by":        driver.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	driver.Version = oldVersion + 1
	return nil
}

func (r *driverRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Driver{}).
		Where("driver_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
