package rmqconsumer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"user-directory-api/config"
	"user-directory-api/internal/infrastructure/mq"
)

// can scale depends on a parallel worker count
const preFetchCount = 1

var actions = map[string]string{
	http.MethodPost:   "UserCreated",
	http.MethodPatch:  "UserUpdated",
	http.MethodDelete: "UserDeleted",
}

// Consumer drains the user events queue and writes every event to the log.
type Consumer struct {
	cfg        config.MQ
	log        *zap.Logger
	conn       *amqp091.Connection
	chConsume  *amqp091.Channel
	chDelivery <-chan amqp091.Delivery
}

// New builds a consumer. A non-nil conn is shared instead of dialing again.
func New(cfg config.MQ, logger *zap.Logger, conn *amqp091.Connection) *Consumer {
	return &Consumer{
		cfg:  cfg,
		log:  logger,
		conn: conn,
	}
}

func (c *Consumer) Connect(dsn string) error {
	conn := c.conn
	if conn == nil {
		var err error
		if conn, err = amqp091.Dial(dsn); err != nil {
			return fmt.Errorf("amqp dial: %w", err)
		}
	}

	ch, err := conn.Channel()
	if err != nil {
		if c.conn == nil {
			_ = conn.Close()
		}
		return fmt.Errorf("amqp channel: %w", err)
	}
	c.conn, c.chConsume = conn, ch

	c.log.Info("rabbitmq consumer connected successfully")

	return nil
}

func (c *Consumer) Init() error {
	if err := c.chConsume.ExchangeDeclare(
		c.cfg.Exchange,
		c.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := c.chConsume.QueueDeclare(
		c.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	for _, rk := range mq.RoutingKeys {
		if err := c.chConsume.QueueBind(
			c.cfg.QueueName,
			rk,
			c.cfg.Exchange,
			false,
			nil,
		); err != nil {
			return fmt.Errorf("queue bind %s: %w", rk, err)
		}
	}

	if err := c.chConsume.Qos(preFetchCount, 0, false); err != nil {
		return fmt.Errorf("qos: %w", err)
	}

	var err error
	c.chDelivery, err = c.chConsume.Consume(
		c.cfg.QueueName,
		"",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	return nil
}

func (c *Consumer) DeliveryWorker(ctx context.Context) {
	c.log.Info("starting delivery worker")

	defer func() {
		c.log.Info("delivery worker gracefully stopped")
	}()

	for {
		select {
		case msg, ok := <-c.chDelivery:
			if !ok {
				c.log.Warn("delivery channel closed")
				return
			}
			if err := c.delivery(msg); err != nil {
				c.log.Error("mq read message error", zap.Error(err))
			}
		case <-ctx.Done():
			_ = c.chConsume.Close()
			return
		}
	}
}

func (c *Consumer) delivery(msg amqp091.Delivery) error {
	action, ok := actions[msg.RoutingKey]
	if !ok {
		return fmt.Errorf("unknown routing key %q", msg.RoutingKey)
	}

	var e mq.Event
	if err := json.Unmarshal(msg.Body, &e); err != nil {
		return fmt.Errorf("decode %s event: %w", action, err)
	}

	c.log.Info("user event",
		zap.String("action", action),
		zap.String("event_id", e.Id.String()),
		zap.String("user_id", e.UserID),
		zap.Time("time_stamp", e.TS),
	)

	return nil
}
