package rentstatus

import "time"

// DayRecord 区间内单日结果
type DayRecord struct {
	Date   time.Time
	Status DayStatus
	// Report 当天被采用的报告（无报告时为 nil）
	Report *ReportRecord
}

// RangeResult 区间聚合结果
type RangeResult struct {
	DriverID      string
	From          time.Time
	To            time.Time
	Days          []DayRecord
	OverdueCount  int
	RejectedCount int
}

// BlockingSummary 管理端拦截判断所需的汇总
type BlockingSummary struct {
	OverdueCount  int
	RejectedCount int
}

// Blocked 存在逾期或被驳回的天即需拦截
func (b BlockingSummary) Blocked() bool {
	return b.OverdueCount > 0 || b.RejectedCount > 0
}

// Blocking 提取拦截汇总
func (r RangeResult) Blocking() BlockingSummary {
	return BlockingSummary{OverdueCount: r.OverdueCount, RejectedCount: r.RejectedCount}
}

// Counts 按状态统计天数
func (r RangeResult) Counts() map[DayStatus]int {
	counts := make(map[DayStatus]int, len(AllStatuses))
	for _, d := range r.Days {
		counts[d.Status]++
	}
	return counts
}

// Aggregate 逐日遍历闭区间 [from, to] 并分类。
//
//   - 结束日截断到 now 所在日（不预测未来）；截断后 from 晚于 to 时返回空序列
//   - 入职前的日期输出 not_joined，不计入任何计数
//   - 同一天存在多条报告时取 SubmittedAt 最新的一条
//   - OverdueCount / RejectedCount 与 Days 中对应状态的条数严格一致
//
// 区间按 from 所在时区解释。
func Aggregate(lc DriverLifecycle, from, to time.Time, reports []ReportRecord, now time.Time) RangeResult {
	loc := from.Location()
	from = DateIn(from, loc)
	to = DateIn(to, loc)
	if today := Today(now, loc); to.After(today) {
		to = today
	}

	result := RangeResult{
		DriverID: lc.DriverID,
		From:     from,
		To:       to,
		Days:     make([]DayRecord, 0, DaysBetween(from, to)),
	}

	byDate := indexReports(lc.DriverID, reports)

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		report := byDate[dateKey(day)]
		status := Classify(day, lc, report, now)

		result.Days = append(result.Days, DayRecord{Date: day, Status: status, Report: report})
		switch status {
		case StatusOverdue:
			result.OverdueCount++
		case StatusRejected:
			result.RejectedCount++
		}
	}

	return result
}

// PickReport 从同一天的多条报告中选出最新提交的一条；无报告返回 nil
func PickReport(date time.Time, reports []ReportRecord) *ReportRecord {
	var picked *ReportRecord
	for i := range reports {
		r := &reports[i]
		if !sameDay(r.RentDate, date) {
			continue
		}
		if picked == nil || r.SubmittedAt.After(picked.SubmittedAt) {
			picked = r
		}
	}
	return picked
}

// indexReports 按日期建索引；DriverID 非空且与司机不符的行被忽略
func indexReports(driverID string, reports []ReportRecord) map[string]*ReportRecord {
	byDate := make(map[string]*ReportRecord, len(reports))
	for i := range reports {
		r := &reports[i]
		if r.DriverID != "" && driverID != "" && r.DriverID != driverID {
			continue
		}
		key := dateKey(r.RentDate)
		if cur, ok := byDate[key]; ok && !r.SubmittedAt.After(cur.SubmittedAt) {
			continue
		}
		byDate[key] = r
	}
	return byDate
}
