package rentstatus

import (
	"fmt"
	"time"
)

// DateLayout 日期的统一文本格式
const DateLayout = "2006-01-02"

// DateIn 取 t 的年月日，构造 loc 时区下当天零点。
// 数据库 date 列通常以 UTC 零点返回，这里只保留日历字段，不做时刻换算。
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Today now 在 loc 时区下对应的日历日
func Today(now time.Time, loc *time.Location) time.Time {
	return DateIn(now.In(loc), loc)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式无效 %q: %w", s, err)
	}
	return t, nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween 闭区间 [from, to] 的天数；from 晚于 to 时返回 0
func DaysBetween(from, to time.Time) int {
	from = DateIn(from, time.UTC)
	to = DateIn(to, time.UTC)
	if from.After(to) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func dateKey(t time.Time) string {
	return t.Format(DateLayout)
}
