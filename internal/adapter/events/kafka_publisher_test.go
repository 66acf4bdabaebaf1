package events

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func testEvent() domain.Event {
	return domain.Event{
		ID:         uuid.NewString(),
		Type:       domain.EventCheckoutCompleted,
		Lines:      []domain.EventLine{{ItemID: 101, Quantity: 2}},
		Total:      decimal.RequireFromString("11258.00"),
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestEncodeMessage(t *testing.T) {
	evt := testEvent()

	msg, err := encodeMessage(evt)
	require.NoError(t, err)

	assert.Equal(t, evt.ID, string(msg.Key))
	assert.Equal(t, evt.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "checkout.completed", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "checkout.completed", decoded["type"])
	assert.Equal(t, "11258", decoded["total"])
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, pub.Publish(context.Background(), testEvent()))
	assert.Contains(t, buf.String(), `"type":"checkout.completed"`)
	assert.NoError(t, pub.Close())
}

func TestKafkaPublisher_Publish(t *testing.T) {
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}

	topic := "storefront-test-" + uuid.NewString()[:8]
	pub := NewKafkaPublisher(strings.Split(brokers, ","), topic)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	evt := testEvent()
	require.NoError(t, pub.Publish(ctx, evt))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   strings.Split(brokers, ","),
		Topic:     topic,
		Partition: 0,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, evt.ID, string(msg.Key))
}
