package keeper

import (
	"slices"
	"sync"

	"github.com/golang/glog"

	zk "github.com/QuangTung97/zkdual"
)

// watchArg is the watch registration argument of Get, Exists and Children.
// A watch is one-shot: once its event fired, it must be requested again by the next call.
func (c *Conn) watchArg(req *request) bool {
	if req.watch {
		glog.V(2).Infof("[KEEPER] Set %s watch on %q", req.op, req.path)
	}
	return req.watch
}

// Watcher receives watch events and session state changes of a Conn.
// It is called on the transport's callback goroutine and must not block.
type Watcher interface {
	Process(ev zk.Event)
}

// WatcherFunc is a plain function Watcher.
type WatcherFunc func(ev zk.Event)

func (f WatcherFunc) Process(ev zk.Event) {
	f(ev)
}

// NopWatcher ignores every event.
type NopWatcher struct{}

func (NopWatcher) Process(zk.Event) {}

// EventDispatcher is a Watcher that routes node events to the subscribers of their path,
// and session events to the session subscribers, in subscription order.
type EventDispatcher struct {
	mut sync.Mutex

	nextID   int
	paths    map[string]map[int]func(ev zk.Event)
	sessions map[int]func(ev zk.Event)
}

var _ Watcher = &EventDispatcher{}

func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		paths:    map[string]map[int]func(ev zk.Event){},
		sessions: map[int]func(ev zk.Event){},
	}
}

// Subscribe registers handler for the events of path. The returned function unsubscribes it.
func (d *EventDispatcher) Subscribe(path string, handler func(ev zk.Event)) (unsubscribe func()) {
	d.mut.Lock()
	defer d.mut.Unlock()

	id := d.nextID
	d.nextID++

	m, ok := d.paths[path]
	if !ok {
		m = map[int]func(ev zk.Event){}
		d.paths[path] = m
	}
	m[id] = handler

	return func() {
		d.mut.Lock()
		defer d.mut.Unlock()

		delete(m, id)
		if cur, ok := d.paths[path]; ok && len(cur) == 0 {
			delete(d.paths, path)
		}
	}
}

// SubscribeSession registers handler for session events.
func (d *EventDispatcher) SubscribeSession(handler func(ev zk.Event)) (unsubscribe func()) {
	d.mut.Lock()
	defer d.mut.Unlock()

	id := d.nextID
	d.nextID++
	d.sessions[id] = handler

	return func() {
		d.mut.Lock()
		defer d.mut.Unlock()
		delete(d.sessions, id)
	}
}

func (d *EventDispatcher) Process(ev zk.Event) {
	d.mut.Lock()
	m := d.paths[ev.Path]
	if ev.Type == zk.EventSession {
		m = d.sessions
	}
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]func(ev zk.Event), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, m[id])
	}
	d.mut.Unlock()

	// called without the lock, handlers may subscribe again
	for _, h := range handlers {
		h(ev)
	}
}
