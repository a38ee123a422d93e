package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fleetwave/backend/config"
	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/model"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
)

// ── 租金状态模块业务错误 ──

var (
	ErrInvalidDateRange = errors.New("日期区间无效：起始日期须不晚于结束日期且跨度不超过上限")
)

// BlockingCache 拦截汇总缓存（Redis 实现见 pkg/redis）
type BlockingCache interface {
	GetBlocking(ctx context.Context, driverID, day string) (overdue, rejected int, ok bool, err error)
	SetBlocking(ctx context.Context, driverID, day string, overdue, rejected int, ttl time.Duration) error
	InvalidateBlocking(ctx context.Context, driverID string) error
}

// RentStatusService 租金状态查询接口，是状态引擎在服务内的唯一调用方
type RentStatusService interface {
	// GetCalendar 司机区间日历；区间为空时取最近 default_window_days 天
	GetCalendar(ctx context.Context, driverID string, req *dto.DateRangeRequest) (*dto.RentCalendarResponse, error)
	// GetDayStatus 司机单日状态；date 为空取今天
	GetDayStatus(ctx context.Context, driverID string, date string) (*dto.DayStatusResponse, error)
	// GetBlocking 最近 blocking_window_days 天是否存在逾期或驳回
	GetBlocking(ctx context.Context, driverID string) (*dto.BlockingResponse, error)
	// GetFleetGrid 全部司机 × 区间天数网格
	GetFleetGrid(ctx context.Context, req *dto.DateRangeRequest) (*dto.FleetGridResponse, error)
	// Invalidate 司机数据变化后清除缓存
	Invalidate(ctx context.Context, driverID string)
}

type rentStatusService struct {
	cfg    *config.RentConfig
	repo   *repository.Repository
	engine *rentstatus.Engine
	loader rentLoader
	cache  BlockingCache
	logger *zap.Logger
}

// NewRentStatusService 创建 RentStatusService 实例；cache 为 nil 时不缓存
func NewRentStatusService(cfg *config.RentConfig, repo *repository.Repository, engine *rentstatus.Engine, cache BlockingCache, logger *zap.Logger) RentStatusService {
	return &rentStatusService{
		cfg:    cfg,
		repo:   repo,
		engine: engine,
		loader: rentLoader{repo: repo, engine: engine},
		cache:  cache,
		logger: logger,
	}
}

// ────────────────────── GetCalendar ──────────────────────

func (s *rentStatusService) GetCalendar(ctx context.Context, driverID string, req *dto.DateRangeRequest) (*dto.RentCalendarResponse, error) {
	from, to, err := resolveRange(s.engine, req, s.cfg.DefaultWindowDays, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}
	to = clampToToday(s.engine, to)

	driver, err := s.loadDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	reports, err := s.loader.driverReports(ctx, driverID, from, to)
	if err != nil {
		s.logger.Error("加载租金报告失败", zap.String("driver_id", driverID), zap.Error(err))
		return nil, err
	}

	lc := lifecycleOf(driver)
	result := s.engine.Aggregate(lc, from, to, reports)

	resp := &dto.RentCalendarResponse{
		DriverID:      driverID,
		From:          rentstatus.FormatDate(from),
		To:            rentstatus.FormatDate(to),
		Days:          make([]dto.DayStatusResponse, 0, len(result.Days)),
		Counts:        make(map[string]int, len(rentstatus.AllStatuses)),
		OverdueCount:  result.OverdueCount,
		RejectedCount: result.RejectedCount,
	}
	for _, day := range result.Days {
		resp.Days = append(resp.Days, s.loader.toDayStatusResponse(lc, day))
	}
	for status, n := range result.Counts() {
		resp.Counts[string(status)] = n
	}
	return resp, nil
}

// ────────────────────── GetDayStatus ──────────────────────

func (s *rentStatusService) GetDayStatus(ctx context.Context, driverID string, date string) (*dto.DayStatusResponse, error) {
	day, err := dateOrToday(s.engine, date)
	if err != nil {
		return nil, err
	}

	driver, err := s.loadDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	reports, err := s.loader.driverReports(ctx, driverID, day, day)
	if err != nil {
		s.logger.Error("加载租金报告失败", zap.String("driver_id", driverID), zap.Error(err))
		return nil, err
	}

	lc := lifecycleOf(driver)
	report := rentstatus.PickReport(day, reports)
	record := rentstatus.DayRecord{
		Date:   day,
		Status: s.engine.Classify(day, lc, report),
		Report: report,
	}
	resp := s.loader.toDayStatusResponse(lc, record)
	return &resp, nil
}

// ────────────────────── GetBlocking ──────────────────────

func (s *rentStatusService) GetBlocking(ctx context.Context, driverID string) (*dto.BlockingResponse, error) {
	to := s.engine.Today()
	from := to.AddDate(0, 0, -(s.cfg.BlockingWindowDays - 1))
	resp := &dto.BlockingResponse{
		DriverID: driverID,
		From:     rentstatus.FormatDate(from),
		To:       rentstatus.FormatDate(to),
	}

	day := resp.To
	if s.cache != nil {
		overdue, rejected, ok, err := s.cache.GetBlocking(ctx, driverID, day)
		if err != nil {
			s.logger.Warn("读取拦截缓存失败，回源计算", zap.String("driver_id", driverID), zap.Error(err))
		} else if ok {
			summary := rentstatus.BlockingSummary{OverdueCount: overdue, RejectedCount: rejected}
			resp.OverdueCount, resp.RejectedCount, resp.Blocked = overdue, rejected, summary.Blocked()
			return resp, nil
		}
	}

	driver, err := s.loadDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	reports, err := s.loader.driverReports(ctx, driverID, from, to)
	if err != nil {
		s.logger.Error("加载租金报告失败", zap.String("driver_id", driverID), zap.Error(err))
		return nil, err
	}

	lc := lifecycleOf(driver)
	summary := s.engine.Aggregate(lc, from, to, reports).Blocking()
	resp.OverdueCount, resp.RejectedCount, resp.Blocked = summary.OverdueCount, summary.RejectedCount, summary.Blocked()

	if s.cache != nil {
		ttl := blockingTTL(s.engine, lc.Shift, s.cfg.BlockingCacheTTL)
		if err := s.cache.SetBlocking(ctx, driverID, day, summary.OverdueCount, summary.RejectedCount, ttl); err != nil {
			s.logger.Warn("写入拦截缓存失败", zap.String("driver_id", driverID), zap.Error(err))
		}
	}
	return resp, nil
}

// blockingTTL 缓存不跨越今天内的下一个截止时刻，否则越过截止后仍读到旧的逾期数。
// 跨零点由缓存键中的日期切换
func blockingTTL(engine *rentstatus.Engine, shift rentstatus.Shift, limit time.Duration) time.Duration {
	now := engine.Now()
	today := engine.Today()
	ttl := limit
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		deadline, ok := engine.Deadline(day, shift)
		if !ok || !deadline.After(now) {
			continue
		}
		if until := deadline.Sub(now); until < ttl {
			ttl = until
		}
	}
	return ttl
}

// ────────────────────── GetFleetGrid ──────────────────────

func (s *rentStatusService) GetFleetGrid(ctx context.Context, req *dto.DateRangeRequest) (*dto.FleetGridResponse, error) {
	from, to, err := resolveRange(s.engine, req, s.cfg.DefaultWindowDays, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}
	// 列与每行 Days 一一对应，二者都截止到今天
	to = clampToToday(s.engine, to)

	rows, err := s.buildGrid(ctx, from, to)
	if err != nil {
		return nil, err
	}

	resp := &dto.FleetGridResponse{
		From:  rentstatus.FormatDate(from),
		To:    rentstatus.FormatDate(to),
		Dates: []string{},
		Rows:  rows,
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		resp.Dates = append(resp.Dates, rentstatus.FormatDate(d))
	}
	return resp, nil
}

// buildGrid 司机列表与区间报告并发加载，再逐司机聚合
func (s *rentStatusService) buildGrid(ctx context.Context, from, to time.Time) ([]dto.FleetGridRow, error) {
	drivers, reports, err := loadFleet(ctx, s.repo, s.loader, from, to)
	if err != nil {
		s.logger.Error("加载车队数据失败", zap.Error(err))
		return nil, err
	}

	rows := make([]dto.FleetGridRow, 0, len(drivers))
	for i := range drivers {
		d := &drivers[i]
		lc := lifecycleOf(d)
		result := s.engine.Aggregate(lc, from, to, reports[d.DriverID])

		row := dto.FleetGridRow{
			Driver:        toDriverBrief(d),
			Days:          make([]dto.DayStatusResponse, 0, len(result.Days)),
			OverdueCount:  result.OverdueCount,
			RejectedCount: result.RejectedCount,
		}
		for _, day := range result.Days {
			row.Days = append(row.Days, s.loader.toDayStatusResponse(lc, day))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ────────────────────── Invalidate ──────────────────────

func (s *rentStatusService) Invalidate(ctx context.Context, driverID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateBlocking(ctx, driverID); err != nil {
		s.logger.Warn("清除拦截缓存失败", zap.String("driver_id", driverID), zap.Error(err))
	}
}

// ── 内部辅助方法 ──

func (s *rentStatusService) loadDriver(ctx context.Context, driverID string) (*model.Driver, error) {
	driver, err := s.repo.Driver.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDriverNotFound
		}
		s.logger.Error("查询司机失败", zap.String("driver_id", driverID), zap.Error(err))
		return nil, err
	}
	return driver, nil
}

// loadFleet 并发加载全部司机与区间内报告
func loadFleet(ctx context.Context, repo *repository.Repository, loader rentLoader, from, to time.Time) ([]model.Driver, map[string][]rentstatus.ReportRecord, error) {
	var (
		drivers []model.Driver
		reports map[string][]rentstatus.ReportRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		drivers, err = repo.Driver.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = loader.rangeReports(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return drivers, reports, nil
}

// clampToToday 状态视图不预测未来：结束日截断到今天。
// 整个区间都在未来时返回的 to 早于 from，Days 与 Dates 均为空
func clampToToday(engine *rentstatus.Engine, to time.Time) time.Time {
	if today := engine.Today(); to.After(today) {
		return today
	}
	return to
}

// resolveRange 解析区间参数：
//   - to 为空取今天，from 为空取 to 往前 defaultDays-1 天
//   - from 晚于 to 或跨度超过 maxDays 返回 ErrInvalidDateRange
func resolveRange(engine *rentstatus.Engine, req *dto.DateRangeRequest, defaultDays, maxDays int) (time.Time, time.Time, error) {
	to, err := dateOrToday(engine, req.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	var from time.Time
	if req.From == "" {
		from = to.AddDate(0, 0, -(defaultDays - 1))
	} else if from, err = engine.ParseDate(req.From); err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}

	if from.After(to) || rentstatus.DaysBetween(from, to) > maxDays {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return from, to, nil
}
