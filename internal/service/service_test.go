package service

import (
	"time"

	"go.uber.org/zap"

	"fleetwave/backend/config"
	"fleetwave/backend/internal/model"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
)

// ── 测试辅助 ──

var ist = time.FixedZone("IST", 5*3600+1800)

type testEnv struct {
	svc       *Service
	drivers   *mockDriverRepo
	reports   *mockRentReportRepo
	adjusts   *mockAdjustmentRepo
	cache     *mockBlockingCache
	publisher *mockPublisher
}

// newTestEnv 以固定时刻 now（IST）构建完整 Service 聚合
func newTestEnv(now time.Time) *testEnv {
	env := &testEnv{
		drivers:   newMockDriverRepo(),
		reports:   newMockRentReportRepo(),
		adjusts:   newMockAdjustmentRepo(),
		cache:     newMockBlockingCache(),
		publisher: &mockPublisher{},
	}
	repo := &repository.Repository{
		Driver:     env.drivers,
		RentReport: env.reports,
		Adjustment: env.adjusts,
	}
	cfg := &config.Config{
		Rent: config.RentConfig{
			Timezone:           "Asia/Kolkata",
			DefaultWindowDays:  7,
			BlockingWindowDays: 30,
			MaxRangeDays:       31,
			BlockingCacheTTL:   2 * time.Minute,
		},
	}
	engine := rentstatus.NewEngine(rentstatus.FixedClock(now), ist)
	env.svc = NewService(cfg, repo, engine, env.cache, env.publisher, zap.NewNop())
	return env
}

func at(day, hour, min int) time.Time {
	return time.Date(2024, 6, day, hour, min, 0, 0, ist)
}

func utcDate(day int) time.Time {
	return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
}

func (e *testEnv) addDriver(id, name, shift string, joiningDay int) *model.Driver {
	d := &model.Driver{
		DriverID: id,
		Name:     name,
		Phone:    "+91" + id,
		Shift:    shift,
		Online:   true,
	}
	if joiningDay > 0 {
		jd := utcDate(joiningDay)
		d.JoiningDate = &jd
	}
	d.Version = 1
	e.drivers.drivers[id] = d
	return d
}

func (e *testEnv) addReport(id, driverID string, day int, status string, submittedAt time.Time) *model.RentReport {
	r := &model.RentReport{
		ReportID:    id,
		DriverID:    driverID,
		RentDate:    utcDate(day),
		Status:      status,
		SubmittedAt: submittedAt,
	}
	r.Version = 1
	e.reports.reports[id] = r
	return r
}
