package eventloop

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ayanmadaan/trading-engine/internal/model"
)

func TestLoop_DispatchesInOrder(t *testing.T) {
	l := New()
	var mu sync.Mutex
	var seen []uint64

	l.On(model.EventMarketUpdate, func(e model.Event) {
		mu.Lock()
		seen = append(seen, e.TraceID)
		mu.Unlock()
	})

	l.Start()
	for i := uint64(1); i <= 5; i++ {
		l.Submit(model.Event{Kind: model.EventMarketUpdate, TraceID: i})
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 5
	}, time.Second, time.Millisecond)

	l.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, seen)
}

func TestLoop_HandlerPanicDoesNotStopLoop(t *testing.T) {
	l := New()
	var processed int
	var mu sync.Mutex
	var panics int

	l.On(model.EventMarketUpdate, func(e model.Event) {
		mu.Lock()
		processed++
		mu.Unlock()
		if e.TraceID == 2 {
			panic("boom")
		}
	})
	l.OnHandlerError(func(e model.Event, r any) {
		mu.Lock()
		panics++
		mu.Unlock()
	})

	l.Start()
	l.Submit(model.Event{Kind: model.EventMarketUpdate, TraceID: 1})
	l.Submit(model.Event{Kind: model.EventMarketUpdate, TraceID: 2})
	l.Submit(model.Event{Kind: model.EventMarketUpdate, TraceID: 3})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return processed == 3
	}, time.Second, time.Millisecond)
	l.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, panics)
}

func TestLoop_StopDrainsInProgressThenExits(t *testing.T) {
	l := New()
	started := make(chan struct{})
	release := make(chan struct{})
	l.On(model.EventMarketUpdate, func(e model.Event) {
		close(started)
		<-release
	})
	l.Start()
	l.Submit(model.Event{Kind: model.EventMarketUpdate})
	<-started

	stopped := make(chan struct{})
	go func() {
		l.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned before in-progress handler finished")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)
	<-stopped
}

func TestLoop_StartIsIdempotentWhileRunning(t *testing.T) {
	l := New()
	l.On(model.EventMarketUpdate, func(model.Event) {})
	l.Start()
	l.Start()
	l.Stop()
}
