package ports

import (
	"user-directory-api/internal/infrastructure/mq"
)

type EventPublisher interface {
	Publish(e mq.Event)
}
