package zkfake

import (
	"bytes"
	"slices"
	"strings"
	"sync"

	zk "github.com/QuangTung97/zkdual"
)

// Session is a client session of a Store. It implements keeper.WatchingTransport.
type Session struct {
	store *Store
	id    int64

	// protected by store.mut
	state       zk.State
	identities  []zk.ACL
	nextFailure error
	nextReject  error

	mut      sync.Mutex
	queue    []func()
	cond     *sync.Cond
	shutdown bool
	watcher  func(ev zk.Event)

	wg sync.WaitGroup
}

// NewSession creates an established session.
func (s *Store) NewSession() *Session {
	s.mut.Lock()
	s.lastSessionID++
	id := s.lastSessionID
	s.mut.Unlock()

	sess := &Session{
		store: s,
		id:    id,
		state: zk.StateHasSession,
	}
	sess.cond = sync.NewCond(&sess.mut)

	sess.wg.Add(1)
	go func() {
		defer sess.wg.Done()
		sess.runDelivery()
	}()

	return sess
}

// ID returns the session id, the EphemeralOwner of its ephemeral nodes.
func (s *Session) ID() int64 {
	return s.id
}

func (s *Session) runDelivery() {
	for {
		fns, ok := s.nextDeliveries()
		if !ok {
			return
		}
		for _, fn := range fns {
			fn()
		}
	}
}

func (s *Session) nextDeliveries() ([]func(), bool) {
	s.mut.Lock()
	defer s.mut.Unlock()

	for {
		if len(s.queue) > 0 {
			fns := s.queue
			s.queue = nil
			return fns, true
		}
		if s.shutdown {
			return nil, false
		}
		s.cond.Wait()
	}
}

func (s *Session) enqueue(fn func()) {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.shutdown {
		return
	}
	s.queue = append(s.queue, fn)
	s.cond.Signal()
}

func (s *Session) getWatcher() func(ev zk.Event) {
	s.mut.Lock()
	defer s.mut.Unlock()
	return s.watcher
}

func (s *Session) emit(ev zk.Event) {
	s.enqueue(func() {
		if w := s.getWatcher(); w != nil {
			w(ev)
		}
	})
}

func (s *Session) emitState(state zk.State) {
	s.emit(zk.Event{
		Type:   zk.EventSession,
		State:  state,
		Server: "zkfake",
	})
}

// SetWatcher sets the receiver of watch and session events. An established session
// reports itself to the new watcher.
func (s *Session) SetWatcher(watcher func(ev zk.Event)) {
	s.mut.Lock()
	s.watcher = watcher
	s.mut.Unlock()

	s.store.mut.Lock()
	defer s.store.mut.Unlock()
	if s.state == zk.StateHasSession {
		s.emitState(zk.StateHasSession)
	}
}

// State returns the session state.
func (s *Session) State() zk.State {
	s.store.mut.Lock()
	defer s.store.mut.Unlock()
	return s.state
}

// FailNext makes err the outcome of the next call.
func (s *Session) FailNext(err error) {
	s.store.mut.Lock()
	defer s.store.mut.Unlock()
	s.nextFailure = err
}

// RejectNext makes the next call return err without being issued.
func (s *Session) RejectNext(err error) {
	s.store.mut.Lock()
	defer s.store.mut.Unlock()
	s.nextReject = err
}

// Disconnect keeps the session but drops its connection.
// Calls made while disconnected complete with CodeConnectionLoss.
func (s *Session) Disconnect() {
	s.store.mut.Lock()
	defer s.store.mut.Unlock()

	if s.state != zk.StateHasSession {
		return
	}
	s.state = zk.StateDisconnected
	s.emitState(zk.StateDisconnected)
}

// Reconnect resumes a disconnected session.
func (s *Session) Reconnect() {
	s.store.mut.Lock()
	defer s.store.mut.Unlock()

	if s.state != zk.StateDisconnected {
		return
	}
	s.state = zk.StateHasSession
	s.emitState(zk.StateHasSession)
}

// Expire ends the session as the server does after the session timeout.
func (s *Session) Expire() {
	s.store.mut.Lock()
	defer s.store.mut.Unlock()

	if !s.aliveLocked() {
		return
	}
	s.endLocked(zk.StateExpired)
	s.emitState(zk.StateExpired)
}

// Close ends the session, reports StateClosed to the watcher
// and waits until every pending callback has been called.
// It must not be called from a callback.
func (s *Session) Close() {
	s.store.mut.Lock()
	if s.aliveLocked() {
		s.endLocked(zk.StateClosed)
		s.emitState(zk.StateClosed)
	}
	s.state = zk.StateClosed
	s.store.mut.Unlock()

	s.mut.Lock()
	s.shutdown = true
	s.cond.Signal()
	s.mut.Unlock()

	s.wg.Wait()
}

// Sync waits until the callbacks of every call made before are called.
// It must not be called from a callback.
func (s *Session) Sync() {
	done := make(chan struct{})

	s.mut.Lock()
	if s.shutdown {
		s.mut.Unlock()
		return
	}
	s.queue = append(s.queue, func() { close(done) })
	s.cond.Signal()
	s.mut.Unlock()

	<-done
}

func (s *Session) aliveLocked() bool {
	return s.state == zk.StateHasSession || s.state == zk.StateDisconnected
}

func (s *Session) endLocked(state zk.State) {
	s.store.removeWatchesOf(s)
	s.store.removeEphemerals(s)
	s.state = state
}

// allowed reports whether the session may use perm on a node with acl.
func (s *Session) allowed(acl []zk.ACL, perm int32) bool {
	for _, a := range acl {
		if a.Perms&perm == 0 {
			continue
		}
		switch a.Scheme {
		case "world":
			if a.ID == "anyone" {
				return true
			}
		case "ip", "host":
			return true
		default:
			for _, id := range s.identities {
				if id.Scheme == a.Scheme && id.ID == a.ID {
					return true
				}
			}
		}
	}
	return false
}

// fixupACL replaces "auth" entries with the identities of the session.
func (s *Session) fixupACL(acl []zk.ACL) ([]zk.ACL, error) {
	if len(acl) == 0 {
		return nil, zk.CodeInvalidACL
	}

	result := make([]zk.ACL, 0, len(acl))
	for _, a := range acl {
		if a.Perms < 0 || a.Perms&^zk.PermAll != 0 {
			return nil, zk.CodeInvalidACL
		}

		switch a.Scheme {
		case "auth":
			if len(s.identities) == 0 {
				return nil, zk.CodeInvalidACL
			}
			for _, id := range s.identities {
				result = append(result, zk.ACL{Perms: a.Perms, Scheme: id.Scheme, ID: id.ID})
			}
		case "world":
			if a.ID != "anyone" {
				return nil, zk.CodeInvalidACL
			}
			result = append(result, a)
		case "digest":
			if !strings.Contains(a.ID, ":") {
				return nil, zk.CodeInvalidACL
			}
			result = append(result, a)
		default:
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *Session) addAuth(scheme string, auth []byte) error {
	if scheme != "digest" {
		return zk.CodeAuthFailed
	}

	user, password, ok := bytes.Cut(auth, []byte(":"))
	if !ok || len(user) == 0 {
		return zk.CodeAuthFailed
	}

	id := zk.DigestACL(zk.PermAll, string(user), string(password))[0]
	id.Perms = 0
	if !slices.Contains(s.identities, id) {
		s.identities = append(s.identities, id)
	}
	return nil
}
