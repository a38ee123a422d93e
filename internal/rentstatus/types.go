// Package rentstatus 租金状态推导引擎。
//
// 纯函数库：给定司机班次、入职日期、上下线窗口与每日租金报告，
// 推导每天的缴租状态（日历格、徽标、拦截检查共用同一套规则）。
// 引擎不做任何 I/O，也不持有可变共享状态，可被多个 goroutine 并发调用。
package rentstatus

import (
	"strings"
	"time"
)

// Shift 司机班次
type Shift string

const (
	ShiftMorning Shift = "morning"
	ShiftNight   Shift = "night"
	Shift24Hr    Shift = "24hr"
	ShiftNone    Shift = "none"
)

// ParseShift 将数据库中的原始班次字符串归一化；无法识别的值一律视为 none
func ParseShift(s string) Shift {
	switch Shift(strings.ToLower(strings.TrimSpace(s))) {
	case ShiftMorning:
		return ShiftMorning
	case ShiftNight:
		return ShiftNight
	case Shift24Hr:
		return Shift24Hr
	default:
		return ShiftNone
	}
}

// Valid 是否为已知班次（含 none）
func (s Shift) Valid() bool {
	switch s {
	case ShiftMorning, ShiftNight, Shift24Hr, ShiftNone:
		return true
	}
	return false
}

// ReportStatus 租金报告状态 — 对应 rent_reports.status
type ReportStatus string

const (
	ReportPending             ReportStatus = "pending"
	ReportPendingVerification ReportStatus = "pending_verification"
	ReportPaid                ReportStatus = "paid"
	ReportRejected            ReportStatus = "rejected"
	ReportLeave               ReportStatus = "leave"
)

// Valid 是否为已知报告状态
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportPendingVerification, ReportPaid, ReportRejected, ReportLeave:
		return true
	}
	return false
}

// DayStatus 某司机某天的派生状态（不落库，每次查询重新计算）
type DayStatus string

const (
	StatusPaid                DayStatus = "paid"
	StatusPaidWithAdjustment  DayStatus = "paid_with_adjustment"
	StatusPending             DayStatus = "pending"
	StatusPendingVerification DayStatus = "pending_verification"
	StatusOverdue             DayStatus = "overdue"
	StatusRejected            DayStatus = "rejected"
	StatusLeave               DayStatus = "leave"
	StatusOffline             DayStatus = "offline"
	StatusNotJoined           DayStatus = "not_joined"
)

// AllStatuses 全部状态，顺序即日历图例顺序
var AllStatuses = []DayStatus{
	StatusPaid,
	StatusPaidWithAdjustment,
	StatusPending,
	StatusPendingVerification,
	StatusOverdue,
	StatusRejected,
	StatusLeave,
	StatusOffline,
	StatusNotJoined,
}

// DriverLifecycle 司机生命周期窗口：决定哪些天需要提交报告。
// 日期字段只取其年月日，时分秒与时区被忽略。
type DriverLifecycle struct {
	DriverID        string
	Shift           Shift
	JoiningDate     *time.Time
	IsOnline        bool
	OfflineFromDate *time.Time
	OnlineFromDate  *time.Time
}

// ReportRecord 司机某天的实际提交
type ReportRecord struct {
	ReportID    string
	DriverID    string
	RentDate    time.Time
	Status      ReportStatus
	SubmittedAt time.Time
	// HasAdjustment 是否挂有已审批的财务调整，由调用方从调整记录中填充
	HasAdjustment bool
}

// Clock 可注入的时钟
type Clock interface {
	Now() time.Time
}

// ClockFunc 函数适配为 Clock
type ClockFunc func() time.Time

// Now 实现 Clock
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock 墙上时钟
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock 固定时刻时钟（测试与回放用）
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
