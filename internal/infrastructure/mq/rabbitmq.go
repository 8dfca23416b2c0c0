package mq

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"user-directory-api/config"
	"user-directory-api/internal/interface/api/rest/dto/user"
)

// "Rely on metrics, not guesses."
const bufferSize = 128

// RoutingKeys are the lifecycle actions events are published under.
var RoutingKeys = []string{
	http.MethodPost,
	http.MethodPatch,
	http.MethodDelete,
}

type (
	InputCh  = chan Event
	RabbitMQ struct {
		cfg   config.MQ
		log   *zap.Logger
		conn  *amqp091.Connection
		pubCh *amqp091.Channel
		in    InputCh
	}
	Event struct {
		Id      uuid.UUID `json:"event_id"`
		TS      time.Time `json:"time_stamp"`
		Method  string    `json:"event_action"`
		UserID  string    `json:"user_id"`
		Payload user.User `json:"user_payload"`
	}
)

func NewEvent(method string, u user.User) Event {
	return Event{
		Id:      uuid.New(),
		TS:      time.Now().UTC(),
		Method:  method,
		UserID:  u.UUID.String(),
		Payload: u,
	}
}

func New(cfg config.MQ, logger *zap.Logger) *RabbitMQ {
	return &RabbitMQ{
		cfg: cfg,
		log: logger,
		in:  make(chan Event, bufferSize),
	}
}

func (r *RabbitMQ) Connect(ctx context.Context, dsn string) error {
	dialer := &net.Dialer{Timeout: 10 * time.Second}

	amqpCfg := amqp091.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Properties: amqp091.Table{
			"connection_name": "userdirectory",
		},
		Dial: func(network, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
	}

	var err error
	r.conn, err = amqp091.DialConfig(dsn, amqpCfg)
	if err != nil {
		return err
	}
	r.pubCh, err = r.conn.Channel()
	if err != nil {
		_ = r.conn.Close()
		return err
	}

	r.log.Info("rabbitmq connected successfully")

	return nil
}

func (r *RabbitMQ) Init() error {
	var err error
	if err = r.pubCh.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		_ = r.pubCh.Close()
		return err
	}
	q, err := r.pubCh.QueueDeclare(
		r.cfg.QueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	for _, rk := range RoutingKeys {
		if err = r.pubCh.QueueBind(q.Name, rk, r.cfg.Exchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}

// Publish queues e for the publisher worker. It never blocks a request:
// when the buffer is full the event is dropped and logged.
func (r *RabbitMQ) Publish(e Event) {
	select {
	case r.in <- e:
	default:
		r.log.Warn("mq buffer full, event dropped",
			zap.String("event_id", e.Id.String()),
			zap.String("event_action", e.Method),
			zap.String("user_id", e.UserID),
		)
	}
}

func (r *RabbitMQ) PublisherWorker(ctx context.Context) {
	r.log.Info("starting publisher worker")

	defer func() {
		r.log.Info("publisher worker gracefully stopped")
	}()

	for {
		select {
		case e := <-r.in:
			if err := r.publish(ctx, e); err != nil {
				// alert
				r.log.Error("mq publish error", zap.Error(err), zap.String("event_id", e.Id.String()))
			}
		case <-ctx.Done():
			if r.pubCh != nil {
				_ = r.pubCh.Close()
			}
			return
		}
	}
}

func (r *RabbitMQ) publish(ctx context.Context, e Event) error {
	pub, err := toPublishing(e)
	if err != nil {
		return err
	}

	return r.pubCh.PublishWithContext(
		ctx,
		r.cfg.Exchange,
		e.Method,
		true,
		false,
		pub,
	)
}

func toPublishing(e Event) (amqp091.Publishing, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return amqp091.Publishing{}, err
	}

	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    e.Id.String(),
		Timestamp:    e.TS,
		Type:         e.Method,
		Body:         b,
	}, nil
}

func (r *RabbitMQ) GetConn() *amqp091.Connection { return r.conn }

func (r *RabbitMQ) Close() {
	if r.conn != nil {
		_ = r.conn.Close()
	}
}

// LogPublisher stands in for RabbitMQ when no broker is configured.
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher { return &LogPublisher{log: logger} }

func (p *LogPublisher) Publish(e Event) {
	p.log.Debug("user event",
		zap.String("event_id", e.Id.String()),
		zap.String("event_action", e.Method),
		zap.String("user_id", e.UserID),
	)
}
