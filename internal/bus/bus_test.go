package bus

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForCalls(t *testing.T, counter *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if counter.Load() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, want, counter.Load())
}

func scope(id int64) *int64 { return &id }

func TestPublish_ScopedMatch(t *testing.T) {
	b := NewBus()
	defer b.Close()

	var hit42, hit7, hitAll atomic.Int64
	b.Subscribe(EventGetByID, scope(42), func() { hit42.Add(1) })
	b.Subscribe(EventGetByID, scope(7), func() { hit7.Add(1) })
	b.Subscribe(EventGetByID, nil, func() { hitAll.Add(1) })

	b.Publish(Scoped(EventGetByID, 42))

	waitForCalls(t, &hit42, 1)
	waitForCalls(t, &hitAll, 1)
	assert.Equal(t, int64(0), hit7.Load())
}

func TestPublish_WildcardReachesEveryScope(t *testing.T) {
	b := NewBus()
	defer b.Close()

	var hits atomic.Int64
	b.Subscribe(GroupGetPaginated, scope(1), func() { hits.Add(1) })
	b.Subscribe(GroupGetPaginated, scope(2), func() { hits.Add(1) })
	b.Subscribe(GroupGetPaginated, nil, func() { hits.Add(1) })

	b.Publish(Wildcard(GroupGetPaginated))

	waitForCalls(t, &hits, 3)
}

func TestPublish_DifferentNameDoesNotMatch(t *testing.T) {
	b := NewBus()
	defer b.Close()

	var hits atomic.Int64
	b.Subscribe(EventGetByID, nil, func() { hits.Add(1) })

	b.Publish(Wildcard(GroupGetByID))
	b.Publish(Scoped(CommentGetForEvent, 42))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), hits.Load())
}

func TestUnsubscribe_StopsDelivery(t *testing.T) {
	b := NewBus()
	defer b.Close()

	var hits atomic.Int64
	sub := b.Subscribe(EventGetByID, scope(42), func() { hits.Add(1) })

	b.Publish(Scoped(EventGetByID, 42))
	waitForCalls(t, &hits, 1)

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	b.Publish(Scoped(EventGetByID, 42))
	b.Publish(Wildcard(EventGetByID))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), hits.Load())
}

func TestClose_RejectsPublishAndSubscribe(t *testing.T) {
	b := NewBus()

	var hits atomic.Int64
	b.Subscribe(EventGetByID, nil, func() { hits.Add(1) })
	b.Close()
	b.Close() // idempotent

	b.Publish(Wildcard(EventGetByID))
	b.Subscribe(EventGetByID, nil, func() { hits.Add(1) })
	b.Publish(Wildcard(EventGetByID))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), hits.Load())
}

func TestWatch_ReceivesPublishedEvents(t *testing.T) {
	b := NewBus()
	defer b.Close()

	w := b.Watch()
	defer w.Stop()

	b.Publish(Scoped(EventGetByID, 42))

	select {
	case ev := <-w.C:
		assert.Equal(t, EventGetByID, ev.Name)
		require.NotNil(t, ev.ScopeID)
		assert.Equal(t, int64(42), *ev.ScopeID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestWatcherStop_ConcurrentWithPublish(t *testing.T) {
	// Stopping a watcher while a mutation publishes must not panic with a
	// send on its closed channel.
	b := NewBus()
	defer b.Close()

	for i := 0; i < 200; i++ {
		w := b.Watch()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				b.Publish(Wildcard(EventGetByID))
			}
		}()
		go func() {
			defer wg.Done()
			w.Stop()
		}()
		wg.Wait()
		w.Stop() // idempotent
	}
}

func TestKnown(t *testing.T) {
	assert.True(t, Known(EventGetByID))
	assert.True(t, Known(GroupFreeIntervals))
	assert.False(t, Known(EventName("event.getEverything")))
	assert.False(t, Known(EventName("")))
}
