package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"fleetwave/backend/config"
)

// KafkaPublisher 基于 kafka-go Writer 的发布器，Writer 在进程内复用
type KafkaPublisher struct {
	writer *kafkago.Writer
	logger *zap.Logger
}

// NewKafkaPublisher 创建 Kafka 发布器
func NewKafkaPublisher(cfg *config.KafkaConfig, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("notify.kafka.brokers 不能为空")
	}
	if cfg.Topic == "" {
		return nil, errors.New("notify.kafka.topic 不能为空")
	}

	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}

	logger.Info("Kafka 提醒发布器已初始化",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return &KafkaPublisher{writer: w, logger: logger}, nil
}

// Publish 批量写入；Hash 分区保证同一司机的事件落在同一分区
func (p *KafkaPublisher) Publish(ctx context.Context, events ...ReminderEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafkago.Message, 0, len(events))
	for i := range events {
		value, err := encode(&events[i])
		if err != nil {
			return err
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(events[i].Key()),
			Value: value,
		})
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("Kafka 写入提醒事件失败", zap.Int("count", len(msgs)), zap.Error(err))
		return fmt.Errorf("投递提醒事件失败: %w", err)
	}
	return nil
}

// Close 刷新并关闭 Writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
