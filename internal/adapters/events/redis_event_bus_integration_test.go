//go:build integration

package events

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/livesearch-plp/internal/domain/entities"
	"github.com/zatekoja/livesearch-plp/internal/domain/providers"
	"github.com/zatekoja/livesearch-plp/internal/infrastructure/clients/redis"
	"github.com/zatekoja/livesearch-plp/pkg/config"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	host := os.Getenv("TEST_REDIS_HOST")
	if host == "" {
		t.Skip("Skipping integration test: TEST_REDIS_HOST not set")
	}
	port, err := strconv.Atoi(os.Getenv("TEST_REDIS_PORT"))
	if err != nil {
		port = 6379
	}

	client, err := redis.NewClient(&config.RedisConfig{
		Host:     host,
		Port:     port,
		Password: os.Getenv("TEST_REDIS_PASSWORD"),
	})
	require.NoError(t, err, "Failed to create redis client")
	t.Cleanup(func() { client.Close() })
	return client
}

func waitForEvent(t *testing.T, ch <-chan *entities.CatalogEvent) *entities.CatalogEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return event
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for catalog event")
		return nil
	}
}

func TestRedisEventBusFanoutIntegration(t *testing.T) {
	bus := NewRedisEventBus(newTestRedisClient(t))
	defer bus.Close()

	channel := providers.GetStoreChannel("it_" + strconv.FormatInt(time.Now().UnixNano(), 36))
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	defer cancel1()
	defer cancel2()

	sub1, err := bus.Subscribe(ctx1, channel)
	require.NoError(t, err)
	sub2, err := bus.Subscribe(ctx2, channel)
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)

	event := &entities.CatalogEvent{
		ID:            "evt-it-1",
		Type:          entities.CatalogEventProductsIndexed,
		StoreViewCode: "default",
		CategoryPaths: []string{"gear/bags"},
		ProductCount:  12,
		Timestamp:     time.Now().UTC(),
	}
	require.NoError(t, bus.Publish(context.Background(), channel, event))

	received1 := waitForEvent(t, sub1)
	received2 := waitForEvent(t, sub2)
	assert.Equal(t, event.ID, received1.ID)
	assert.Equal(t, event.ID, received2.ID)
	assert.Equal(t, event.CategoryPaths, received1.CategoryPaths)

	// cancelling one subscriber leaves the other attached
	cancel1()
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, bus.Publish(context.Background(), channel, &entities.CatalogEvent{ID: "evt-it-2", Type: entities.CatalogEventCategoriesChange}))
	assert.Equal(t, "evt-it-2", waitForEvent(t, sub2).ID)
}
