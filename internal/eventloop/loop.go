// Package eventloop implements the single linearization point for all state
// mutations (§4.1). It is grounded on the teacher's internal/bus.Queue —
// a mutex/condition-variable-protected, multi-producer single-consumer FIFO —
// generalized from a byte-payload WAL event to the domain's model.Event union
// and from a single handler function to a per-EventKind dispatch table.
package eventloop

import (
	"sync"

	"github.com/ayanmadaan/trading-engine/internal/errors"
	"github.com/ayanmadaan/trading-engine/internal/model"
	"github.com/yanun0323/logs"
)

// Handler processes one event synchronously on the dispatcher thread.
// Handlers must not block on the event queue.
type Handler func(model.Event)

// Loop is the event-loop core (§4.1). Submit is non-blocking and safe from
// any goroutine; Start/Stop control the single consumer goroutine.
type Loop struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []model.Event
	handlers map[model.EventKind]Handler

	running  bool
	shutdown bool
	done     chan struct{}

	onHandlerError func(model.Event, any)
}

// New creates an idle event loop. Register handlers with On before Start.
func New() *Loop {
	l := &Loop{
		handlers: make(map[model.EventKind]Handler),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// On registers the handler invoked for events of the given kind. Register
// before Start: events dispatched before the call find no handler and are
// dropped with a warning.
func (l *Loop) On(kind model.EventKind, h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[kind] = h
}

// OnHandlerError installs a callback invoked whenever a handler panics, so
// the panic can be logged and swallowed per the spec's "handler_error" policy
// (§4.1: "Errors thrown inside a handler are caught, logged as handler_error,
// and do not terminate the loop").
func (l *Loop) OnHandlerError(f func(model.Event, any)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onHandlerError = f
}

// Submit enqueues an event without blocking. Never fails; ordering is FIFO
// per producer, and cross-producer ordering is first-in (§4.1).
func (l *Loop) Submit(e model.Event) {
	l.mu.Lock()
	l.queue = append(l.queue, e)
	l.mu.Unlock()
	l.cond.Signal()
}

// Start spawns the consumer goroutine. Idempotent while already running.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.shutdown = false
	l.done = make(chan struct{})
	l.mu.Unlock()

	go l.run()
}

// Stop sets the shutdown flag and wakes all waiters. The consumer finishes the
// in-progress handler and every event still queued, then exits; Stop returns
// once it has. Submissions after Stop returns are accepted but not processed
// unless Start is called again (§4.1).
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.shutdown = true
	done := l.done
	l.mu.Unlock()
	l.cond.Broadcast()
	<-done
}

// Len reports the number of events currently queued, for tests and health
// checks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) run() {
	defer func() {
		l.mu.Lock()
		l.running = false
		done := l.done
		l.mu.Unlock()
		close(done)
	}()

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.shutdown {
			l.cond.Wait()
		}
		if len(l.queue) == 0 && l.shutdown {
			l.mu.Unlock()
			return
		}
		e := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.dispatch(e)
	}
}

func (l *Loop) dispatch(e model.Event) {
	l.mu.Lock()
	h := l.handlers[e.Kind]
	onErr := l.onHandlerError
	l.mu.Unlock()

	if h == nil {
		logs.Warnf("event loop: no handler registered for kind=%s", e.Kind.String())
		return
	}

	defer func() {
		if r := recover(); r != nil {
			if onErr != nil {
				onErr(e, r)
			} else {
				logs.Errorf("handler_error kind=%s err=%+v", e.Kind.String(), errors.New("handler panic"))
			}
		}
	}()
	h(e)
}
