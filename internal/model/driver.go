package model

import "time"

// Driver 司机表 — 对应 drivers
type Driver struct {
	DriverID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"driver_id"`
	Name            string     `gorm:"type:varchar(100);not null"                     json:"name"`
	Phone           string     `gorm:"type:varchar(20);not null"                      json:"phone"`
	VehicleNumber   string     `gorm:"type:varchar(20)"                               json:"vehicle_number,omitempty"`
	Shift           string     `gorm:"type:varchar(10);not null;default:'none'"       json:"shift"` // morning | night | 24hr | none
	JoiningDate     *time.Time `gorm:"type:date"                                      json:"joining_date,omitempty"`
	Online          bool       `gorm:"not null;default:true"                          json:"online"`
	OfflineFromDate *time.Time `gorm:"type:date"                                      json:"offline_from_date,omitempty"`
	OnlineFromDate  *time.Time `gorm:"type:date"                                      json:"online_from_date,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Driver) TableName() string { return "drivers" }
