package rmqconsumer

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"user-directory-api/config"
	"user-directory-api/internal/infrastructure/mq"
	"user-directory-api/internal/interface/api/rest/dto/user"
)

func eventBody(t *testing.T, method string) ([]byte, mq.Event) {
	t.Helper()
	e := mq.NewEvent(method, user.User{UUID: uuid.New(), Name: "Ana"})
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b, e
}

func Test_delivery_Table(t *testing.T) {
	cases := []struct {
		name       string
		routingKey string
		wantAction string
	}{
		{"POST -> UserCreated", http.MethodPost, "UserCreated"},
		{"PATCH -> UserUpdated", http.MethodPatch, "UserUpdated"},
		{"DELETE -> UserDeleted", http.MethodDelete, "UserDeleted"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			c := &Consumer{log: zap.New(core)}

			body, e := eventBody(t, tt.routingKey)
			require.NoError(t, c.delivery(amqp091.Delivery{RoutingKey: tt.routingKey, Body: body}))

			entries := logs.FilterMessage("user event").All()
			require.Len(t, entries, 1)
			fields := entries[0].ContextMap()
			assert.Equal(t, tt.wantAction, fields["action"])
			assert.Equal(t, e.UserID, fields["user_id"])
			assert.Equal(t, e.Id.String(), fields["event_id"])
		})
	}
}

func Test_delivery_Rejects(t *testing.T) {
	c := &Consumer{log: zap.NewNop()}

	body, _ := eventBody(t, http.MethodPut)
	require.Error(t, c.delivery(amqp091.Delivery{RoutingKey: http.MethodPut, Body: body}))
	require.Error(t, c.delivery(amqp091.Delivery{RoutingKey: http.MethodPost, Body: []byte("{bad")}))
}

func TestConnect_InvalidDSN(t *testing.T) {
	c := New(config.MQ{}, zap.NewNop(), nil)

	err := c.Connect("amqp://bad:://dsn")
	require.Error(t, err)
	require.Nil(t, c.chConsume)
	require.Nil(t, c.conn)
}
