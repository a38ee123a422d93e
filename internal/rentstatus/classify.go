package rentstatus

import "time"

// Classify 判定单日状态。规则按顺序首个命中即返回：
//
//  1. 早于入职日 → not_joined（入职日为空时视为所有日期均有效）
//  2. 存在报告 → 按报告状态映射；pending 超过截止时刻视为 overdue
//  3. 无报告 → 处于下线窗口为 offline，否则按截止时刻判定 overdue / pending
//
// date 只取年月日，截止时刻按 date 所在时区计算；未来日期的截止时刻尚未到达，
// 因此永远不会是 overdue。函数对任意输入都有定义，不返回错误。
func Classify(date time.Time, lc DriverLifecycle, report *ReportRecord, now time.Time) DayStatus {
	loc := date.Location()
	date = DateIn(date, loc)

	if lc.JoiningDate != nil && date.Before(DateIn(*lc.JoiningDate, loc)) {
		return StatusNotJoined
	}

	shift := ParseShift(string(lc.Shift))

	if report != nil {
		switch report.Status {
		case ReportLeave:
			return StatusLeave
		case ReportRejected:
			return StatusRejected
		case ReportPendingVerification:
			return StatusPendingVerification
		case ReportPaid:
			if report.HasAdjustment {
				return StatusPaidWithAdjustment
			}
			return StatusPaid
		default:
			// pending 及未知状态：未过截止仍为 pending，过了截止仍计入逾期
			if DeadlinePassed(date, shift, now) {
				return StatusOverdue
			}
			return StatusPending
		}
	}

	if lc.inOfflineWindow(date) {
		return StatusOffline
	}
	if DeadlinePassed(date, shift, now) {
		return StatusOverdue
	}
	return StatusPending
}

// inOfflineWindow date 是否落在 [offline_from_date, online_from_date) 内。
//
// online_from_date 不晚于 offline_from_date 时，它属于上一轮上线，
// 若司机当前仍处于下线状态，则窗口对后续日期保持开放。
func (lc DriverLifecycle) inOfflineWindow(date time.Time) bool {
	if lc.OfflineFromDate == nil {
		return false
	}
	loc := date.Location()
	offFrom := DateIn(*lc.OfflineFromDate, loc)
	if date.Before(offFrom) {
		return false
	}

	if lc.OnlineFromDate != nil {
		onFrom := DateIn(*lc.OnlineFromDate, loc)
		if onFrom.After(offFrom) || lc.IsOnline {
			return date.Before(onFrom)
		}
	}
	return true
}
