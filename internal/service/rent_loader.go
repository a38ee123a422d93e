package service

import (
	"context"
	"time"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/model"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
)

const (
	timestampLayout = "2006-01-02T15:04:05Z"
)

// rentLoader 从存储加载引擎输入：生命周期、报告及调整标记
type rentLoader struct {
	repo   *repository.Repository
	engine *rentstatus.Engine
}

// driverReports 单个司机在区间内的报告，已填充 HasAdjustment
func (l rentLoader) driverReports(ctx context.Context, driverID string, from, to time.Time) ([]rentstatus.ReportRecord, error) {
	rows, err := l.repo.RentReport.ListByDriver(ctx, driverID, from, to)
	if err != nil {
		return nil, err
	}
	return l.toRecords(ctx, rows)
}

// rangeReports 全部司机在区间内的报告，按司机分组
func (l rentLoader) rangeReports(ctx context.Context, from, to time.Time) (map[string][]rentstatus.ReportRecord, error) {
	rows, err := l.repo.RentReport.ListByRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	records, err := l.toRecords(ctx, rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]rentstatus.ReportRecord)
	for _, r := range records {
		grouped[r.DriverID] = append(grouped[r.DriverID], r)
	}
	return grouped, nil
}

func (l rentLoader) toRecords(ctx context.Context, rows []model.RentReport) ([]rentstatus.ReportRecord, error) {
	var paidIDs []string
	for i := range rows {
		if rows[i].Status == string(rentstatus.ReportPaid) {
			paidIDs = append(paidIDs, rows[i].ReportID)
		}
	}
	adjusted, err := l.repo.Adjustment.ApprovedReportIDs(ctx, paidIDs)
	if err != nil {
		return nil, err
	}

	records := make([]rentstatus.ReportRecord, 0, len(rows))
	for i := range rows {
		r := &rows[i]
		records = append(records, rentstatus.ReportRecord{
			ReportID:      r.ReportID,
			DriverID:      r.DriverID,
			RentDate:      l.engine.Date(r.RentDate),
			Status:        rentstatus.ReportStatus(r.Status),
			SubmittedAt:   r.SubmittedAt,
			HasAdjustment: adjusted[r.ReportID],
		})
	}
	return records, nil
}

// lifecycleOf 将司机记录转换为引擎的生命周期窗口
func lifecycleOf(d *model.Driver) rentstatus.DriverLifecycle {
	return rentstatus.DriverLifecycle{
		DriverID:        d.DriverID,
		Shift:           rentstatus.ParseShift(d.Shift),
		JoiningDate:     d.JoiningDate,
		IsOnline:        d.Online,
		OfflineFromDate: d.OfflineFromDate,
		OnlineFromDate:  d.OnlineFromDate,
	}
}

// storeDate date 列统一以 UTC 零点写入，只保留年月日
func storeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := rentstatus.FormatDate(*t)
	return &s
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timestampLayout)
	return &s
}

// toDayStatusResponse 单日结果转换为响应，附带展示信息与截止时间
func (l rentLoader) toDayStatusResponse(lc rentstatus.DriverLifecycle, day rentstatus.DayRecord) dto.DayStatusResponse {
	info := rentstatus.Display(day.Status)
	resp := dto.DayStatusResponse{
		Date:   rentstatus.FormatDate(day.Date),
		Status: string(day.Status),
		Label:  info.Label,
		Color:  info.Color,
	}
	if deadline, ok := l.engine.Deadline(day.Date, lc.Shift); ok {
		s := deadline.Format(time.RFC3339)
		resp.Deadline = &s
	}
	if day.Report != nil {
		id := day.Report.ReportID
		resp.ReportID = &id
	}
	return resp
}
