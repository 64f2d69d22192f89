// Package recipe implements coordination recipes on the asynchronous calls of keeper.
//
// Recipes are driven by a Curator added to a keeper.Conn with keeper.WithSessionRunner.
// Their callbacks all run on the transport's callback goroutine, so they keep their state
// without locks.
package recipe

import (
	zk "github.com/QuangTung97/zkdual"
	"github.com/QuangTung97/zkdual/keeper"
)

// Curator is used for maintaining Session object.
// when new zookeeper session is established, old Session will be invalided and can NOT be used anymore
type Curator struct {
	initFunc func(sess *Session)

	conn *keeper.Conn
	sess *Session
}

var _ keeper.SessionRunner = &Curator{}

// Session represents a zookeeper session
type Session struct {
	retryFuncs []func(sess *Session)
	state      *Curator
}

// NewCurator creates a Curator with simple init function when session started
func NewCurator(initFunc func(sess *Session)) *Curator {
	return &Curator{
		initFunc: initFunc,
	}
}

// SessionCallback is one step of a chain created by NewChain.
type SessionCallback func(sess *Session, next func(sess *Session))

// NewChain creates a chain of callbacks when next callback is called only after the previous callback allows.
// For example when doing locking, ONLY after the lock is granted the next callback could allow to run.
func NewChain(initFuncList ...SessionCallback) *Curator {
	next := func(sess *Session) {}
	for i := len(initFuncList) - 1; i >= 0; i-- {
		initFn := initFuncList[i]
		oldNext := next
		next = func(sess *Session) {
			initFn(sess, oldNext)
		}
	}
	return &Curator{
		initFunc: next,
	}
}

// Begin callback when new session is established
func (c *Curator) Begin(conn *keeper.Conn) {
	c.conn = conn
	c.sess = &Session{
		state: c,
	}
	c.initFunc(c.sess)
}

// Retry callback when new connection is established after disconnecting
func (c *Curator) Retry() {
	if c.sess == nil {
		return
	}
	funcs := c.sess.retryFuncs
	c.sess.retryFuncs = nil
	for _, cb := range funcs {
		cb(c.sess)
	}
}

// End callback when current session is expired or closed
func (c *Curator) End() {
	c.sess = nil
}

// Run calls fn with the connection, only when sess is still the current session.
func (s *Session) Run(fn func(conn *keeper.Conn)) {
	if s.state.sess != s {
		return
	}
	fn(s.state.conn)
}

// AddRetry add a callback function that will be called after connection is re-established.
func (s *Session) AddRetry(callback func(sess *Session)) {
	s.retryFuncs = append(s.retryFuncs, callback)
}

// handleCode reports whether a call completed with OK. A connection loss schedules retry,
// any other failure is left to fail.
func (s *Session) handleCode(code keeper.Code, retry func(sess *Session), fail func(err error)) bool {
	switch code {
	case keeper.OK:
		return true
	case zk.CodeConnectionLoss:
		s.AddRetry(retry)
		return false
	default:
		fail(code)
		return false
	}
}
