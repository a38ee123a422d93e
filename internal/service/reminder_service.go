package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fleetwave/backend/internal/dto"
	"fleetwave/backend/internal/repository"
	"fleetwave/backend/internal/rentstatus"
	"fleetwave/backend/pkg/notify"
)

// 提醒模板键（由下游 WhatsApp 发送方渲染）
const (
	TemplateRentDue      = "rent_due_reminder"
	TemplateRentOverdue  = "rent_overdue"
	TemplateRentRejected = "rent_rejected_resubmit"
)

// TemplateFor 状态 → 模板键；不需要提醒的状态返回 false
func TemplateFor(status rentstatus.DayStatus) (string, bool) {
	switch status {
	case rentstatus.StatusPending:
		return TemplateRentDue, true
	case rentstatus.StatusOverdue:
		return TemplateRentOverdue, true
	case rentstatus.StatusRejected:
		return TemplateRentRejected, true
	}
	return "", false
}

// ReminderService 提醒派发接口
type ReminderService interface {
	// Dispatch 对在线司机逐个判定 date 当天状态，需要行动的发布提醒事件
	Dispatch(ctx context.Context, req *dto.ReminderDispatchRequest) (*dto.ReminderDispatchResponse, error)
}

type reminderService struct {
	repo      *repository.Repository
	engine    *rentstatus.Engine
	loader    rentLoader
	publisher notify.Publisher
	logger    *zap.Logger
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(repo *repository.Repository, engine *rentstatus.Engine, publisher notify.Publisher, logger *zap.Logger) ReminderService {
	return &reminderService{
		repo:      repo,
		engine:    engine,
		loader:    rentLoader{repo: repo, engine: engine},
		publisher: publisher,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Dispatch 生成并发布提醒事件
// ═══════════════════════════════════════════════════════════

func (s *reminderService) Dispatch(ctx context.Context, req *dto.ReminderDispatchRequest) (*dto.ReminderDispatchResponse, error) {
	date, err := dateOrToday(s.engine, req.Date)
	if err != nil {
		return nil, err
	}

	drivers, reports, err := loadFleet(ctx, s.repo, s.loader, date, date)
	if err != nil {
		s.logger.Error("加载车队数据失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.ReminderDispatchResponse{
		Date:     rentstatus.FormatDate(date),
		ByStatus: make(map[string]int),
	}
	now := s.engine.Now().UTC()

	var events []notify.ReminderEvent
	for i := range drivers {
		d := &drivers[i]
		if !d.Online {
			continue
		}
		resp.Checked++

		lc := lifecycleOf(d)
		status := s.engine.Classify(date, lc, rentstatus.PickReport(date, reports[d.DriverID]))
		template, ok := TemplateFor(status)
		if !ok {
			continue
		}

		event := notify.ReminderEvent{
			DriverID:   d.DriverID,
			DriverName: d.Name,
			Phone:      d.Phone,
			RentDate:   resp.Date,
			Status:     string(status),
			Template:   template,
			CreatedAt:  now,
		}
		if deadline, ok := s.engine.Deadline(date, lc.Shift); ok {
			v := deadline.Format(time.RFC3339)
			event.Deadline = &v
		}
		events = append(events, event)
		resp.ByStatus[string(status)]++
	}

	if len(events) > 0 {
		if err := s.publisher.Publish(ctx, events...); err != nil {
			s.logger.Error("发布提醒事件失败", zap.String("date", resp.Date), zap.Int("count", len(events)), zap.Error(err))
			return nil, err
		}
	}
	resp.Published = len(events)

	s.logger.Info("提醒派发完成",
		zap.String("date", resp.Date),
		zap.Int("checked", resp.Checked),
		zap.Int("published", resp.Published),
	)
	return resp, nil
}
