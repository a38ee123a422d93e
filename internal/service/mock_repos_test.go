package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"fleetwave/backend/internal/model"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
	pkgerrors "fleetwave/backend/pkg/errors"
	"fleetwave/backend/pkg/notify"
)

func inRange(d, from, to time.Time) bool {
	k := rentstatus.FormatDate(d)
	return k >= rentstatus.FormatDate(from) && k <= rentstatus.FormatDate(to)
}

// ── Mock DriverRepository ──

type mockDriverRepo struct {
	drivers map[string]*model.Driver
	seq     int
}

func newMockDriverRepo() *mockDriverRepo {
	return &mockDriverRepo{drivers: make(map[string]*model.Driver)}
}

func (m *mockDriverRepo) Create(_ context.Context, driver *model.Driver) error {
	if driver.DriverID == "" {
		m.seq++
		driver.DriverID = fmt.Sprintf("drv-%03d", m.seq)
	}
	if driver.Version == 0 {
		driver.Version = 1
	}
	m.drivers[driver.DriverID] = driver
	return nil
}

func (m *mockDriverRepo) GetByID(_ context.Context, id string) (*model.Driver, error) {
	if d, ok := m.drivers[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDriverRepo) GetByPhone(_ context.Context, phone string) (*model.Driver, error) {
	for _, d := range m.drivers {
		if d.Phone == phone {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDriverRepo) List(ctx context.Context, filter repository.DriverFilter, offset, limit int) ([]model.Driver, int64, error) {
	all, _ := m.ListAll(ctx)
	var result []model.Driver
	for _, d := range all {
		if filter.Shift != "" && d.Shift != filter.Shift {
			continue
		}
		if filter.Online != nil && d.Online != *filter.Online {
			continue
		}
		result = append(result, d)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockDriverRepo) ListAll(_ context.Context) ([]model.Driver, error) {
	result := make([]model.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		result = append(result, *d)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDriverRepo) Update(_ context.Context, driver *model.Driver) error {
	cp := *driver
	cp.Version++
	m.drivers[driver.DriverID] = &cp
	driver.Version = cp.Version
	return nil
}

func (m *mockDriverRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.drivers, id)
	return nil
}

// ── Mock RentReportRepository ──

type mockRentReportRepo struct {
	reports map[string]*model.RentReport
	seq     int
}

func newMockRentReportRepo() *mockRentReportRepo {
	return &mockRentReportRepo{reports: make(map[string]*model.RentReport)}
}

func (m *mockRentReportRepo) Create(_ context.Context, report *model.RentReport) error {
	if report.ReportID == "" {
		m.seq++
		report.ReportID = fmt.Sprintf("rpt-%03d", m.seq)
	}
	if report.Version == 0 {
		report.Version = 1
	}
	m.reports[report.ReportID] = report
	return nil
}

func (m *mockRentReportRepo) GetByID(_ context.Context, id string) (*model.RentReport, error) {
	if r, ok := m.reports[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRentReportRepo) ListByDriver(ctx context.Context, driverID string, from, to time.Time) ([]model.RentReport, error) {
	all, _ := m.ListByRange(ctx, from, to)
	var result []model.RentReport
	for _, r := range all {
		if r.DriverID == driverID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockRentReportRepo) ListByRange(_ context.Context, from, to time.Time) ([]model.RentReport, error) {
	var result []model.RentReport
	for _, r := range m.reports {
		if inRange(r.RentDate, from, to) {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].RentDate.Equal(result[j].RentDate) {
			return result[i].RentDate.Before(result[j].RentDate)
		}
		return result[i].SubmittedAt.Before(result[j].SubmittedAt)
	})
	return result, nil
}

func (m *mockRentReportRepo) Update(_ context.Context, report *model.RentReport) error {
	cp := *report
	cp.Version++
	m.reports[report.ReportID] = &cp
	report.Version = cp.Version
	return nil
}

// ── Mock AdjustmentRepository ──

type mockAdjustmentRepo struct {
	adjustments map[string]*model.Adjustment
	seq         int
	// beforeResolve 在 Resolve 写入前执行，用于模拟并发审批
	beforeResolve func()
}

func newMockAdjustmentRepo() *mockAdjustmentRepo {
	return &mockAdjustmentRepo{adjustments: make(map[string]*model.Adjustment)}
}

func (m *mockAdjustmentRepo) Create(_ context.Context, adj *model.Adjustment) error {
	if adj.AdjustmentID == "" {
		m.seq++
		adj.AdjustmentID = fmt.Sprintf("adj-%03d", m.seq)
	}
	m.adjustments[adj.AdjustmentID] = adj
	return nil
}

func (m *mockAdjustmentRepo) GetByID(_ context.Context, id string) (*model.Adjustment, error) {
	if a, ok := m.adjustments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAdjustmentRepo) ListByReport(_ context.Context, reportID string) ([]model.Adjustment, error) {
	var result []model.Adjustment
	for _, a := range m.adjustments {
		if a.ReportID == reportID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AdjustmentID < result[j].AdjustmentID })
	return result, nil
}

func (m *mockAdjustmentRepo) ApprovedReportIDs(_ context.Context, reportIDs []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(reportIDs))
	for _, id := range reportIDs {
		wanted[id] = true
	}
	result := make(map[string]bool)
	for _, a := range m.adjustments {
		if a.Status == AdjustmentApproved && wanted[a.ReportID] {
			result[a.ReportID] = true
		}
	}
	return result, nil
}

func (m *mockAdjustmentRepo) Resolve(_ context.Context, adj *model.Adjustment) error {
	if m.beforeResolve != nil {
		m.beforeResolve()
	}
	cur, ok := m.adjustments[adj.AdjustmentID]
	if !ok || cur.Status != AdjustmentPending {
		return pkgerrors.ErrOptimisticLock
	}
	cp := *adj
	m.adjustments[adj.AdjustmentID] = &cp
	return nil
}

// ── Mock BlockingCache ──

type blockingEntry struct {
	overdue, rejected int
}

type mockBlockingCache struct {
	entries     map[string]blockingEntry
	sets        int
	lastTTL     time.Duration
	invalidated []string
}

func newMockBlockingCache() *mockBlockingCache {
	return &mockBlockingCache{entries: make(map[string]blockingEntry)}
}

func (m *mockBlockingCache) GetBlocking(_ context.Context, driverID, day string) (int, int, bool, error) {
	e, ok := m.entries[driverID+":"+day]
	return e.overdue, e.rejected, ok, nil
}

func (m *mockBlockingCache) SetBlocking(_ context.Context, driverID, day string, overdue, rejected int, ttl time.Duration) error {
	m.sets++
	m.lastTTL = ttl
	m.entries[driverID+":"+day] = blockingEntry{overdue: overdue, rejected: rejected}
	return nil
}

func (m *mockBlockingCache) InvalidateBlocking(_ context.Context, driverID string) error {
	m.invalidated = append(m.invalidated, driverID)
	for k := range m.entries {
		if len(k) > len(driverID) && k[:len(driverID)+1] == driverID+":" {
			delete(m.entries, k)
		}
	}
	return nil
}

// ── Mock Publisher ──

type mockPublisher struct {
	events []notify.ReminderEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, events ...notify.ReminderEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, events...)
	return nil
}

func (m *mockPublisher) Close() error { return nil }
