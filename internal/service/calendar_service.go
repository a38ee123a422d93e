package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fleetwave/backend/config"
	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
)

// ── iCalendar 截止提醒 ──────────────────────────────────────
//
// 每个需要行动的日期（pending / overdue / rejected）生成一个 VEVENT，
// 事件在当天零点开始、在班次截止时刻结束。无截止时刻的班次不产出事件。
// 与日历接口不同，这里不截断到今天，便于司机订阅未来几天的截止时间。
// ─────────────────────────────────────────────────────────────

const icsProductID = "-//fleetwave//rent deadlines//EN"

// CalendarService iCalendar 订阅接口
type CalendarService interface {
	// DriverDeadlinesICS 返回 ICS 文本与建议文件名
	DriverDeadlinesICS(ctx context.Context, driverID string, req *dto.DateRangeRequest) (string, string, error)
}

type calendarService struct {
	cfg    *config.RentConfig
	repo   *repository.Repository
	engine *rentstatus.Engine
	loader rentLoader
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.RentConfig, repo *repository.Repository, engine *rentstatus.Engine, logger *zap.Logger) CalendarService {
	return &calendarService{
		cfg:    cfg,
		repo:   repo,
		engine: engine,
		loader: rentLoader{repo: repo, engine: engine},
		logger: logger,
	}
}

func (s *calendarService) DriverDeadlinesICS(ctx context.Context, driverID string, req *dto.DateRangeRequest) (string, string, error) {
	from, to, err := resolveRange(s.engine, req, s.cfg.DefaultWindowDays, s.cfg.MaxRangeDays)
	if err != nil {
		return "", "", err
	}

	driver, err := s.repo.Driver.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrDriverNotFound
		}
		s.logger.Error("查询司机失败", zap.String("driver_id", driverID), zap.Error(err))
		return "", "", err
	}
	reports, err := s.loader.driverReports(ctx, driverID, from, to)
	if err != nil {
		s.logger.Error("加载租金报告失败", zap.String("driver_id", driverID), zap.Error(err))
		return "", "", err
	}

	lc := lifecycleOf(driver)
	stamp := s.engine.Now().UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName(fmt.Sprintf("Rent deadlines - %s", driver.Name))
	cal.SetXWRTimezone(s.engine.Location().String())

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		status := s.engine.Classify(d, lc, rentstatus.PickReport(d, reports))
		if !status.NeedsAction() {
			continue
		}
		deadline, ok := s.engine.Deadline(d, lc.Shift)
		if !ok {
			continue
		}

		date := rentstatus.FormatDate(d)
		evt := cal.AddEvent(fmt.Sprintf("%s-%s@fleetwave", driverID, date))
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(d)
		evt.SetEndAt(deadline)
		evt.SetSummary(fmt.Sprintf("Rent %s: %s", rentstatus.Display(status).Label, date))
		evt.SetDescription(fmt.Sprintf("Submit rent for %s before %s", date, deadline.Format(time.RFC3339)))
	}

	filename := fmt.Sprintf("rent_deadlines_%s.ics", rentstatus.FormatDate(from))
	return cal.Serialize(), filename, nil
}
