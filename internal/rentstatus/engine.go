package rentstatus

import "time"

// Engine 绑定时钟与业务时区的状态引擎，供 Service 层使用。
// 本身无状态，可安全共享。
type Engine struct {
	clock Clock
	loc   *time.Location
}

// NewEngine 创建引擎；clock 为 nil 时使用墙上时钟，loc 为 nil 时使用 UTC
func NewEngine(clock Clock, loc *time.Location) *Engine {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{clock: clock, loc: loc}
}

// Location 业务时区
func (e *Engine) Location() *time.Location { return e.loc }

// Now 当前时刻（业务时区）
func (e *Engine) Now() time.Time { return e.clock.Now().In(e.loc) }

// Today 业务时区下的今天
func (e *Engine) Today() time.Time { return Today(e.clock.Now(), e.loc) }

// Date 将任意时间值归一为业务时区下的日历日
func (e *Engine) Date(t time.Time) time.Time { return DateIn(t, e.loc) }

// ParseDate 按业务时区解析 YYYY-MM-DD
func (e *Engine) ParseDate(s string) (time.Time, error) { return ParseDate(s, e.loc) }

// Deadline 业务时区下 (date, shift) 的截止时刻
func (e *Engine) Deadline(date time.Time, shift Shift) (time.Time, bool) {
	return Deadline(e.Date(date), shift)
}

// Classify 以当前时钟判定单日状态
func (e *Engine) Classify(date time.Time, lc DriverLifecycle, report *ReportRecord) DayStatus {
	return Classify(e.Date(date), lc, report, e.clock.Now())
}

// Aggregate 以当前时钟聚合区间
func (e *Engine) Aggregate(lc DriverLifecycle, from, to time.Time, reports []ReportRecord) RangeResult {
	return Aggregate(lc, e.Date(from), e.Date(to), reports, e.clock.Now())
}
