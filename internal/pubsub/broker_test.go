package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_PublishSubscribe(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(ItemDeliveredEvent, "sword")

	select {
	case event := <-ch:
		require.Equal(t, ItemDeliveredEvent, event.Type)
		require.Equal(t, "sword", event.Payload)
		require.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := broker.Subscribe(ctx)
	second := broker.Subscribe(ctx)
	require.Equal(t, 2, broker.SubscriberCount())

	broker.Publish(LoadCompletedEvent, 7)

	for _, ch := range []<-chan Event[int]{first, second} {
		select {
		case event := <-ch:
			require.Equal(t, 7, event.Payload)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestBroker_SubscribeAfterClose(t *testing.T) {
	broker := NewBroker[string]()
	broker.Close()

	ch := broker.Subscribe(context.Background())
	_, open := <-ch
	require.False(t, open)
}

func TestBroker_CloseIdempotent(t *testing.T) {
	broker := NewBroker[string]()
	broker.Close()
	require.NotPanics(t, broker.Close)
}

func TestBroker_DropsWhenBufferFull(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1)
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(ItemDeliveredEvent, 1)
	broker.Publish(ItemDeliveredEvent, 2) // dropped, buffer full

	event := <-ch
	require.Equal(t, 1, event.Payload)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected second event: %v", extra.Payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroker_ContextCancelEndsSubscription(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, 0, broker.SubscriberCount())
}
