package model

import "time"

// RentReport 每日租金报告表 — 对应 rent_reports（只追加，不删除）
type RentReport struct {
	ReportID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	DriverID      string     `gorm:"type:uuid;not null"                             json:"driver_id"`
	RentDate      time.Time  `gorm:"type:date;not null"                             json:"rent_date"`
	Status        string     `gorm:"type:varchar(30);not null;default:'pending'"    json:"status"` // pending | pending_verification | paid | rejected | leave
	Amount        float64    `gorm:"type:numeric(12,2);not null;default:0"          json:"amount"`
	ScreenshotURL string     `gorm:"type:varchar(500)"                              json:"screenshot_url,omitempty"`
	RejectReason  string     `gorm:"type:varchar(500)"                              json:"reject_reason,omitempty"`
	SubmittedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"submitted_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy    *string    `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	AuditedVersionModel

	// 关联
	Driver *Driver `gorm:"foreignKey:DriverID;references:DriverID" json:"driver,omitempty"`
}

// TableName 指定表名
func (RentReport) TableName() string { return "rent_reports" }
