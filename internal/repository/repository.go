package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Driver     DriverRepository
	RentReport RentReportRepository
	Adjustment AdjustmentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Driver:     NewDriverRepo(db),
		RentReport: NewRentReportRepo(db),
		Adjustment: NewAdjustmentRepo(db),
	}
}
