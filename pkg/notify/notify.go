// Package notify 提醒事件投递。
//
// 本服务只负责根据租金状态产出提醒事件，WhatsApp 消息的渲染与发送由下游消费者完成。
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleetwave/backend/config"
)

// ReminderEvent 单个司机单日提醒事件
type ReminderEvent struct {
	DriverID   string    `json:"driver_id"`
	DriverName string    `json:"driver_name"`
	Phone      string    `json:"phone"`
	RentDate   string    `json:"rent_date"` // YYYY-MM-DD
	Status     string    `json:"status"`
	Template   string    `json:"template"`
	Deadline   *string   `json:"deadline,omitempty"` // RFC3339
	CreatedAt  time.Time `json:"created_at"`
}

// Key 分区/路由键：同一司机的事件保持有序
func (e *ReminderEvent) Key() string { return e.DriverID }

// Publisher 提醒事件发布器
type Publisher interface {
	Publish(ctx context.Context, events ...ReminderEvent) error
	Close() error
}

// New 按配置选择发布器实现
func New(cfg *config.NotifyConfig, logger *zap.Logger) (Publisher, error) {
	switch cfg.Driver {
	case "kafka":
		return NewKafkaPublisher(&cfg.Kafka, logger)
	case "amqp":
		return NewAMQPPublisher(&cfg.AMQP, logger)
	case "", "none":
		return NewNoopPublisher(logger), nil
	default:
		return nil, fmt.Errorf("不支持的提醒投递方式: %s", cfg.Driver)
	}
}

func encode(e *ReminderEvent) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("序列化提醒事件失败: %w", err)
	}
	return b, nil
}

// ── Noop ──

type noopPublisher struct {
	logger *zap.Logger
}

// NewNoopPublisher 仅记录日志、不投递的发布器（未配置消息中间件时使用）
func NewNoopPublisher(logger *zap.Logger) Publisher {
	return &noopPublisher{logger: logger}
}

func (p *noopPublisher) Publish(_ context.Context, events ...ReminderEvent) error {
	for i := range events {
		p.logger.Debug("提醒事件（未投递）",
			zap.String("driver_id", events[i].DriverID),
			zap.String("rent_date", events[i].RentDate),
			zap.String("template", events[i].Template),
		)
	}
	return nil
}

func (p *noopPublisher) Close() error { return nil }
