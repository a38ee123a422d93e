package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"fleetwave/backend/config"
)

// AMQPPublisher 基于 RabbitMQ direct exchange 的发布器
// amqp.Channel 非并发安全，Publish 以互斥锁串行化
type AMQPPublisher struct {
	mu         sync.Mutex
	conn       *amqp.Connection
	ch         *amqp.Channel
	exchange   string
	routingKey string
	logger     *zap.Logger
}

// NewAMQPPublisher 建立连接并声明持久化 exchange
func NewAMQPPublisher(cfg *config.AMQPConfig, logger *zap.Logger) (*AMQPPublisher, error) {
	if cfg.URL == "" || cfg.Exchange == "" {
		return nil, errors.New("notify.amqp.url 与 notify.amqp.exchange 不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("打开 RabbitMQ channel 失败: %w", err), conn.Close())
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange, // name
		"direct",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("声明 exchange 失败: %w", err), conn.Close())
	}

	logger.Info("RabbitMQ 提醒发布器已初始化", zap.String("exchange", cfg.Exchange))
	return &AMQPPublisher{
		conn:       conn,
		ch:         ch,
		exchange:   cfg.Exchange,
		routingKey: cfg.RoutingKey,
		logger:     logger,
	}, nil
}

// Publish 逐条投递持久化消息
func (p *AMQPPublisher) Publish(ctx context.Context, events ...ReminderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range events {
		body, err := encode(&events[i])
		if err != nil {
			return err
		}
		err = p.ch.PublishWithContext(ctx,
			p.exchange,
			p.routingKey,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    events[i].DriverID + ":" + events[i].RentDate,
				Body:         body,
			},
		)
		if err != nil {
			p.logger.Error("RabbitMQ 投递提醒事件失败",
				zap.String("driver_id", events[i].DriverID),
				zap.Error(err),
			)
			return fmt.Errorf("投递提醒事件失败: %w", err)
		}
	}
	return nil
}

// Close 关闭 channel 与连接
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.ch.Close(), p.conn.Close())
}
