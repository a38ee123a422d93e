package rentstatus

import "time"

// 班次截止时刻（当地时间）
const (
	morningDeadlineHour = 17 // 早班：当天 17:00
	nightDeadlineHour   = 5  // 夜班 / 24 小时班：次日 05:00
)

// Deadline 返回 (date, shift) 的准时提交截止时刻。
// 截止时刻落在 date 所在时区；ok=false 表示该班次没有截止时间（永不逾期）。
func Deadline(date time.Time, shift Shift) (deadline time.Time, ok bool) {
	y, m, d := date.Date()
	loc := date.Location()

	switch shift {
	case ShiftMorning:
		return time.Date(y, m, d, morningDeadlineHour, 0, 0, 0, loc), true
	case ShiftNight, Shift24Hr:
		// 班次跨午夜，time.Date 会把 d+1 规范化到下个月/下一年
		return time.Date(y, m, d+1, nightDeadlineHour, 0, 0, 0, loc), true
	default:
		return time.Time{}, false
	}
}

// DeadlinePassed now 是否已到达或超过截止时刻
func DeadlinePassed(date time.Time, shift Shift, now time.Time) bool {
	deadline, ok := Deadline(date, shift)
	if !ok {
		return false
	}
	return !now.Before(deadline)
}
