package model

import "time"

// Adjustment 财务调整表 — 对应 adjustments
type Adjustment struct {
	AdjustmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"adjustment_id"`
	ReportID     string     `gorm:"type:uuid;not null"                             json:"report_id"`
	DriverID     string     `gorm:"type:uuid;not null"                             json:"driver_id"` // 冗余，便于按司机查询
	Type         string     `gorm:"type:varchar(20);not null"                      json:"type"`   // bonus | penalty | refund
	Amount       float64    `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	Note         string     `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	BaseModel

	// 关联
	Report *RentReport `gorm:"foreignKey:ReportID;references:ReportID" json:"report,omitempty"`
}

// TableName 指定表名
func (Adjustment) TableName() string { return "adjustments" }
