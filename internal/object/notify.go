package object

import (
	"log/slog"
	"sort"
)

// changeSink is the notification fan-out shared by a scope tree: an explicit
// observer list with a dirty flag and a batch depth counter. No event loop,
// no goroutines; everything runs on the mutating caller's stack.
type changeSink struct {
	version    uint64
	batchDepth int
	dirty      bool
	closed     bool

	nextSubID   int
	subscribers map[int]func()
}

func newChangeSink() *changeSink {
	return &changeSink{subscribers: make(map[int]func())}
}

func (cs *changeSink) subscribe(cb func()) func() {
	id := cs.nextSubID
	cs.nextSubID++
	cs.subscribers[id] = cb
	return func() {
		delete(cs.subscribers, id)
	}
}

// markChanged records an externally visible change. Inside a batch it only
// sets the dirty flag; the outermost batch exit bumps the version and
// notifies once.
func (cs *changeSink) markChanged() {
	if cs.closed {
		return
	}
	if cs.batchDepth > 0 {
		cs.dirty = true
		return
	}
	cs.version++
	cs.notify()
}

func (cs *changeSink) batch(fn func()) {
	cs.batchDepth++
	defer func() {
		cs.batchDepth--
		if cs.batchDepth == 0 && cs.dirty {
			cs.dirty = false
			if !cs.closed {
				cs.version++
				cs.notify()
			}
		}
	}()
	fn()
}

// notify calls every subscriber in registration order. A panicking subscriber
// is isolated so the remaining subscribers still run.
func (cs *changeSink) notify() {
	ids := make([]int, 0, len(cs.subscribers))
	for id := range cs.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		cb := cs.subscribers[id]
		if cb == nil {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("change subscriber panicked", slog.Any("panic", r))
				}
			}()
			cb()
		}()
	}
}

func (cs *changeSink) close() {
	cs.closed = true
	cs.dirty = false
	cs.subscribers = make(map[int]func())
}
