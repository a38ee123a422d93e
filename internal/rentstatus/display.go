package rentstatus

// DisplayInfo 日历格展示信息
type DisplayInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var displayTable = map[DayStatus]DisplayInfo{
	StatusPaid:                {Label: "Paid", Color: "#22C55E"},
	StatusPaidWithAdjustment:  {Label: "Paid (Adjusted)", Color: "#14B8A6"},
	StatusPending:             {Label: "Pending", Color: "#EAB308"},
	StatusPendingVerification: {Label: "Verifying", Color: "#3B82F6"},
	StatusOverdue:             {Label: "Overdue", Color: "#EF4444"},
	StatusRejected:            {Label: "Rejected", Color: "#B91C1C"},
	StatusLeave:               {Label: "Leave", Color: "#A855F7"},
	StatusOffline:             {Label: "Offline", Color: "#6B7280"},
	StatusNotJoined:           {Label: "Not Joined", Color: "#D1D5DB"},
}

// Display 状态 → 展示信息（固定映射）；未知状态按 not_joined 的中性样式展示
func Display(s DayStatus) DisplayInfo {
	if info, ok := displayTable[s]; ok {
		return info
	}
	return displayTable[StatusNotJoined]
}

// NeedsAction 司机是否需要对该日采取行动（用于提醒筛选）
func (s DayStatus) NeedsAction() bool {
	switch s {
	case StatusPending, StatusOverdue, StatusRejected:
		return true
	}
	return false
}
