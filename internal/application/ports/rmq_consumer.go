package ports

import "context"

// RMQConsumer reads user events back from the broker. It is only started
// when RABBITMQ_CONSUMER_ENABLED is set.
type RMQConsumer interface {
	Connect(dsn string) error
	Init() error
	DeliveryWorker(ctx context.Context)
}
