// Package keeper is a ZooKeeper access layer where every operation can be called
// either blocking or with a completion handler.
//
// A call without a Callback in its options blocks until the outcome arrives and returns the
// decoded result, or an error that matches one of the Err sentinels with errors.Is.
// A call with a Callback returns at once; the handler later receives the outcome code
// together with the decoded result. Failures to issue a call are returned in both modes.
package keeper

import (
	"errors"
	"fmt"
	"sync"
	"time"

	zk "github.com/QuangTung97/zkdual"
)

// SessionRunner follows the lifetime of the sessions of a Conn. Its methods are called on the
// transport's callback goroutine.
type SessionRunner interface {
	// Begin is called when a new session is established.
	Begin(conn *Conn)
	// Retry is called when the current session is resumed on a new connection.
	Retry()
	// End is called when the current session has expired or the Conn is closed.
	End()
}

// Conn is a session with the store.
type Conn struct {
	transport  Transport
	watcher    Watcher
	runners    []SessionRunner
	defaultACL []ACL
	logger     zk.Logger

	ready      chan struct{}
	hasSession bool // only accessed on the transport's callback goroutine

	closeOnce sync.Once
}

type connOptions struct {
	watcher    Watcher
	runners    []SessionRunner
	defaultACL []ACL
	logger     zk.Logger
	zkOptions  []zk.Option
}

// Option configures a Conn.
type Option func(opts *connOptions)

// WithWatcher sets the watcher of watch events and session state changes, NopWatcher by default.
func WithWatcher(w Watcher) Option {
	return func(opts *connOptions) {
		opts.watcher = w
	}
}

// WithEventDispatcher uses a new EventDispatcher as the watcher, retrieved with Conn.Watcher.
func WithEventDispatcher() Option {
	return func(opts *connOptions) {
		opts.watcher = NewEventDispatcher()
	}
}

// WithSessionRunner adds runners following the lifetime of sessions.
func WithSessionRunner(runners ...SessionRunner) Option {
	return func(opts *connOptions) {
		opts.runners = append(opts.runners, runners...)
	}
}

// WithDefaultACL sets the ACL list of nodes created without one, OpenACLUnsafe by default.
func WithDefaultACL(acl []ACL) Option {
	return func(opts *connOptions) {
		opts.defaultACL = acl
	}
}

func WithLogger(l zk.Logger) Option {
	return func(opts *connOptions) {
		opts.logger = l
	}
}

// WithTransportOptions passes options to the client created by Connect.
func WithTransportOptions(options ...zk.Option) Option {
	return func(opts *connOptions) {
		opts.zkOptions = append(opts.zkOptions, options...)
	}
}

func newConnOptions(options []Option) (connOptions, error) {
	opts := connOptions{
		watcher:    NopWatcher{},
		defaultACL: OpenACLUnsafe(),
		logger:     zk.NewGlogLogger(1),
	}
	for _, fn := range options {
		fn(&opts)
	}
	if opts.watcher == nil {
		return opts, fmt.Errorf("%w: watcher must not be nil", ErrInvalidArgument)
	}
	if len(opts.defaultACL) == 0 {
		return opts, fmt.Errorf("%w: default ACL must not be empty", ErrInvalidArgument)
	}
	return opts, nil
}

func newConn(opts connOptions) *Conn {
	return &Conn{
		watcher:    opts.watcher,
		runners:    opts.runners,
		defaultACL: opts.defaultACL,
		logger:     opts.logger,
		ready:      make(chan struct{}),
	}
}

// Connect creates a session with the servers of hosts, a comma separated "host:port" list.
// The session is established in the background, calls made before fail with ErrConnectionLoss.
func Connect(hosts string, sessionTimeout time.Duration, options ...Option) (*Conn, error) {
	servers := zk.ParseServers(hosts)
	if len(servers) == 0 {
		return nil, fmt.Errorf("%w: no server in %q", ErrInvalidArgument, hosts)
	}
	if sessionTimeout <= 0 {
		return nil, fmt.Errorf("%w: session timeout must be positive", ErrInvalidArgument)
	}

	opts, err := newConnOptions(options)
	if err != nil {
		return nil, err
	}
	c := newConn(opts)

	zkOptions := append([]zk.Option{
		zk.WithLogger(opts.logger),
		zk.WithWatcher(c.process),
	}, opts.zkOptions...)

	client, err := zk.NewClient(zk.FormatServers(servers), sessionTimeout, zkOptions...)
	if err != nil {
		return nil, err
	}

	c.transport = client
	close(c.ready)

	return c, nil
}

// New creates a Conn over an existing transport. Events reach the watcher only when
// the transport is a WatchingTransport.
func New(t Transport, options ...Option) (*Conn, error) {
	if t == nil {
		return nil, errors.New("keeper: transport must not be nil")
	}

	opts, err := newConnOptions(options)
	if err != nil {
		return nil, err
	}
	c := newConn(opts)
	c.transport = t
	close(c.ready)

	if wt, ok := t.(WatchingTransport); ok {
		wt.SetWatcher(c.process)
	}
	return c, nil
}

// process receives every event of the transport.
func (c *Conn) process(ev zk.Event) {
	<-c.ready

	if ev.Type == zk.EventSession {
		c.logger.Infof("Session state changed to %v", ev.State)
		c.runSessionRunners(ev.State)
	}
	c.watcher.Process(ev)
}

func (c *Conn) runSessionRunners(state zk.State) {
	switch state {
	case zk.StateHasSession:
		if !c.hasSession {
			c.hasSession = true
			for _, r := range c.runners {
				r.Begin(c)
			}
			return
		}
		for _, r := range c.runners {
			r.Retry()
		}

	case zk.StateExpired, zk.StateClosed:
		if !c.hasSession {
			return
		}
		c.hasSession = false
		for _, r := range c.runners {
			r.End()
		}

	default:
	}
}

// Watcher returns the watcher of the Conn.
func (c *Conn) Watcher() Watcher {
	return c.watcher
}

// State returns the state of the underlying session.
func (c *Conn) State() zk.State {
	return c.transport.State()
}

// Connected reports whether the session is established and usable.
func (c *Conn) Connected() bool {
	return c.State() == zk.StateHasSession
}

// Closed reports whether Close was called.
func (c *Conn) Closed() bool {
	return c.State() == zk.StateClosed
}

// Close ends the session. Ephemeral nodes of the session are removed by the store.
// Calls made after Close fail with ErrSessionExpired.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.transport.Close()
	})
}
