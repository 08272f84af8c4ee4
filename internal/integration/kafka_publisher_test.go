//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/cattlecomfort/thi-service/internal/adapter/kafka"
	"github.com/cattlecomfort/thi-service/internal/config"
	"github.com/cattlecomfort/thi-service/internal/domain"
	"github.com/cattlecomfort/thi-service/internal/observability"
)

const testTopic = "test-thi-assessments"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka broker in a container and returns
// its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker addresses")
	require.NotEmpty(t, brokers)

	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "resolve controller")

	controllerConn, err := kafkago.Dial("tcp",
		net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func sampleEvent() domain.AssessmentEvent {
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 9)
	return domain.AssessmentEvent{
		ID:           domain.NewAssessmentEventID(-5.0, -45.0, start, end),
		LocationName: "Fazenda Boa Vista",
		Lat:          -5.0,
		Lon:          -45.0,
		PeriodStart:  "2024-03-01",
		PeriodEnd:    "2024-03-10",
		Days:         10,
		MeanIndex:    79.72,
		MeanCategory: domain.CategoryDanger,
		CategoryPercentages: map[domain.Category]float64{
			domain.CategoryAlert:     0,
			domain.CategoryDanger:    100,
			domain.CategoryEmergency: 0,
		},
		GeneratedAt: time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC),
	}
}

// TestPublisherRoundTrip publishes an assessment event through the real
// producer and verifies key, headers, and payload on the consumer side.
func TestPublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	publisher := kafka.NewPublisher(cfg, observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	event := sampleEvent()
	require.NoError(t, publisher.Publish(ctx, event))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read published event")

	assert.Equal(t, event.ID, string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "danger", headers["mean_category"])
	_, err = time.Parse(time.RFC3339, headers["generated_at"])
	assert.NoError(t, err, "generated_at should be valid RFC3339")

	var got domain.AssessmentEvent
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, "Fazenda Boa Vista", got.LocationName)
	assert.Equal(t, "2024-03-01", got.PeriodStart)
	assert.Equal(t, 10, got.Days)
	assert.InDelta(t, 79.72, got.MeanIndex, 1e-9)
	assert.Equal(t, domain.CategoryDanger, got.MeanCategory)
	assert.InDelta(t, 100.0, got.CategoryPercentages[domain.CategoryDanger], 1e-9)
}

// TestPublisherMultipleEvents verifies distinct requests produce distinct
// keys and all events arrive.
func TestPublisherMultipleEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}

	publisher := kafka.NewPublisher(cfg, observability.NewMetricsForTesting(), discardLogger())
	t.Cleanup(func() { _ = publisher.Close() })

	first := sampleEvent()
	second := sampleEvent()
	second.Lat = -10.0
	start := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	second.ID = domain.NewAssessmentEventID(second.Lat, second.Lon, start, start.AddDate(0, 0, 9))

	require.NoError(t, publisher.Publish(ctx, first))
	require.NoError(t, publisher.Publish(ctx, second))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	keys := make(map[string]bool, 2)
	for range 2 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err)
		keys[string(msg.Key)] = true
	}

	assert.Len(t, keys, 2, "events for different coordinates should have distinct keys")
	assert.True(t, keys[first.ID])
	assert.True(t, keys[second.ID])
}
