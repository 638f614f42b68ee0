package subscription

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func counterLoader(counter *int32) Loader[int] {
	return func(ctx context.Context) (int, error) {
		return int(atomic.AddInt32(counter, 1)), nil
	}
}

func channelWatcher(changes chan struct{}) Watcher {
	return func(ctx context.Context) (<-chan struct{}, error) {
		return changes, nil
	}
}

func receive(t *testing.T, sub *Subscription[int]) int {
	t.Helper()
	select {
	case v, ok := <-sub.Snapshots():
		require.True(t, ok, "snapshot channel closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return 0
}

func TestSubscription(t *testing.T) {
	cfg := Config{Name: "test", Log: zap.NewNop()}

	t.Run("Initial Snapshot Is Delivered First", func(t *testing.T) {
		var counter int32
		changes := make(chan struct{})
		sub, err := Start(context.Background(), cfg, counterLoader(&counter), channelWatcher(changes))
		require.NoError(t, err)
		defer sub.Close()

		assert.Equal(t, 1, receive(t, sub))
	})

	t.Run("Change Triggers Reload", func(t *testing.T) {
		var counter int32
		changes := make(chan struct{}, 1)
		sub, err := Start(context.Background(), cfg, counterLoader(&counter), channelWatcher(changes))
		require.NoError(t, err)
		defer sub.Close()

		assert.Equal(t, 1, receive(t, sub))
		changes <- struct{}{}
		assert.Equal(t, 2, receive(t, sub))
	})

	t.Run("Close Stops Delivery", func(t *testing.T) {
		var counter int32
		changes := make(chan struct{}, 1)
		sub, err := Start(context.Background(), cfg, counterLoader(&counter), channelWatcher(changes))
		require.NoError(t, err)

		assert.Equal(t, 1, receive(t, sub))
		sub.Close()
		sub.Close()

		_, ok := <-sub.Snapshots()
		assert.False(t, ok, "channel should be closed after Close")
		assert.NoError(t, sub.Err())
		assert.Equal(t, int32(1), atomic.LoadInt32(&counter), "no reload after close")
	})

	t.Run("Feed Closing Reports Error", func(t *testing.T) {
		var counter int32
		changes := make(chan struct{})
		sub, err := Start(context.Background(), cfg, counterLoader(&counter), channelWatcher(changes))
		require.NoError(t, err)

		receive(t, sub)
		close(changes)

		select {
		case <-sub.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("subscription did not stop")
		}
		assert.ErrorIs(t, sub.Err(), ErrFeedClosed)
	})

	t.Run("Watch Failure Is Returned", func(t *testing.T) {
		watchErr := errors.New("no replica set")
		var counter int32
		sub, err := Start(context.Background(), cfg, counterLoader(&counter), func(ctx context.Context) (<-chan struct{}, error) {
			return nil, watchErr
		})
		assert.Nil(t, sub)
		assert.ErrorIs(t, err, watchErr)
		assert.Equal(t, int32(0), atomic.LoadInt32(&counter))
	})
}

func TestRegistry(t *testing.T) {
	var counter int32
	registry := NewRegistry()

	first, err := Start(context.Background(), Config{}, counterLoader(&counter), channelWatcher(make(chan struct{})))
	require.NoError(t, err)
	second, err := Start(context.Background(), Config{}, counterLoader(&counter), channelWatcher(make(chan struct{})))
	require.NoError(t, err)
	other, err := Start(context.Background(), Config{}, counterLoader(&counter), channelWatcher(make(chan struct{})))
	require.NoError(t, err)
	defer other.Close()

	require.True(t, registry.Reserve("p1").Attach(first))
	require.True(t, registry.Reserve("p1").Attach(second))
	require.True(t, registry.Reserve("p2").Attach(other))

	assert.Equal(t, 2, registry.CloseOwner("p1"))
	assert.Equal(t, 0, registry.Count("p1"))
	assert.Equal(t, 1, registry.Count("p2"))

	<-first.Done()
	<-second.Done()
	select {
	case <-other.Done():
		t.Fatal("other owner's subscription should stay open")
	default:
	}
}

func TestRegistry_SignOutWhileStarting(t *testing.T) {
	var counter int32
	registry := NewRegistry()

	ticket := registry.Reserve("p1")
	assert.Equal(t, 1, registry.Count("p1"))
	assert.Equal(t, 0, registry.CloseOwner("p1"))

	sub, err := Start(context.Background(), Config{}, counterLoader(&counter), channelWatcher(make(chan struct{})))
	require.NoError(t, err)

	assert.False(t, ticket.Attach(sub))
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription attached after sign-out should be closed")
	}
	assert.Equal(t, 0, registry.Count("p1"))

	ticket.Release()
	next := registry.Reserve("p1")
	defer next.Release()
	assert.Equal(t, 1, registry.Count("p1"))
}

func TestRegistry_ReleaseForgetsWithoutClosing(t *testing.T) {
	var counter int32
	registry := NewRegistry()

	sub, err := Start(context.Background(), Config{}, counterLoader(&counter), channelWatcher(make(chan struct{})))
	require.NoError(t, err)
	defer sub.Close()

	ticket := registry.Reserve("p1")
	require.True(t, ticket.Attach(sub))
	ticket.Release()

	assert.Equal(t, 0, registry.Count("p1"))
	assert.Equal(t, 0, registry.CloseOwner("p1"))
	select {
	case <-sub.Done():
		t.Fatal("released subscription should stay open")
	default:
	}
}
