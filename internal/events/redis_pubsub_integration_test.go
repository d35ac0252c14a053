//go:build integration

package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/logistica/backend/internal/events"
	"github.com/logistica/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisPubSub_RoundTrip(t *testing.T) {
	client := testutil.NewRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan events.Event, 1)
	sub := events.NewRedisSubscriber(client, zap.NewNop())
	require.NoError(t, sub.Subscribe(ctx, events.ChannelSeguimiento, func(e events.Event) { got <- e }))

	pub := events.NewRedisPublisher(client, zap.NewNop())
	require.NoError(t, pub.Publish(ctx, events.ChannelSeguimiento, events.Event{
		Type:    events.EventSeguimientoCreated,
		Payload: map[string]any{"pedido_id": int64(7)},
	}))

	select {
	case e := <-got:
		require.Equal(t, events.EventSeguimientoCreated, e.Type)
		id, ok := e.Int64("pedido_id")
		require.True(t, ok)
		require.Equal(t, int64(7), id)
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}
