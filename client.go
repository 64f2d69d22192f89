package zk

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Client is an asynchronous ZooKeeper client.
// Callbacks of requests and watch events are called in order on a single goroutine.
type Client struct {
	logger   Logger
	selector ServerSelector

	dialFunc          func(addr string, timeout time.Duration) (NetworkConn, error)
	dialRetryDuration time.Duration

	// owned by the connection goroutines
	writeCodec       codecBuffer
	readCodec        codecBuffer
	handshakeBuf     codecBuffer
	lastZxid         int64
	passwd           []byte
	sessionID        int64
	sessionTimeoutMs int32
	recvTimeout      atomic.Int64
	pingInterval     time.Duration

	onEstablished  func(c *Client)
	onExpired      func(c *Client)
	onReconnecting func(c *Client)
	watcher        func(ev Event)

	mut sync.Mutex

	nextXidValue uint32
	state        State
	server       string
	conn         NetworkConn

	closing   bool
	sendQueue []pendingRequest
	sendCond  *sync.Cond
	recvMap   map[int32]pendingRequest

	// callbackQueue is drained in order by runCallbacks.
	callbackQueue []func()
	callbackCond  *sync.Cond
	callbacksDone bool

	creds   []authCreds
	watches map[watchPathType]struct{}

	wg           sync.WaitGroup
	sendActivity chan struct{}
	stopPinger   chan struct{}
}

// Option configures a Client.
type Option func(c *Client)

// WithSessionEstablishedCallback is called when a new session is created (not when a session is resumed).
func WithSessionEstablishedCallback(callback func(c *Client)) Option {
	return func(c *Client) {
		c.onEstablished = callback
	}
}

// WithSessionExpiredCallback is called when the server reports that the session has expired.
func WithSessionExpiredCallback(callback func(c *Client)) Option {
	return func(c *Client) {
		c.onExpired = callback
	}
}

// WithReconnectingCallback is called when an existing session is resumed on a new connection.
func WithReconnectingCallback(callback func(c *Client)) Option {
	return func(c *Client) {
		c.onReconnecting = callback
	}
}

// WithWatcher receives every fired watch event and the session state changes of the client.
func WithWatcher(watcher func(ev Event)) Option {
	return func(c *Client) {
		c.watcher = watcher
	}
}

// WithDialRetryDuration is the sleep between two passes over the server list.
func WithDialRetryDuration(d time.Duration) Option {
	return func(c *Client) {
		c.dialRetryDuration = d
	}
}

func WithServerSelector(selector ServerSelector) Option {
	return func(c *Client) {
		c.selector = selector
	}
}

func WithDialTimeoutFunc(
	dialFunc func(addr string, timeout time.Duration) (NetworkConn, error),
) Option {
	return func(c *Client) {
		c.dialFunc = dialFunc
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client and starts connecting to one of servers in the background.
func NewClient(servers []string, sessionTimeout time.Duration, options ...Option) (*Client, error) {
	c, err := newClientInternal(servers, sessionTimeout, options...)
	if err != nil {
		return nil, err
	}

	for _, run := range []func(){c.runConnections, c.runCallbacks, c.runPinger} {
		c.wg.Add(1)
		go func(run func()) {
			defer c.wg.Done()
			run()
		}(run)
	}
	return c, nil
}

func newClientInternal(servers []string, sessionTimeout time.Duration, options ...Option) (*Client, error) {
	if len(servers) == 0 {
		return nil, errors.New("zk: server list must not be empty")
	}
	if sessionTimeout < 1*time.Second {
		return nil, errors.New("zk: session timeout must not be too small")
	}

	c := &Client{
		logger:   NewGlogLogger(0),
		selector: NewServerListSelector(time.Now().UnixNano()),

		dialFunc:          dialTCP,
		dialRetryDuration: 2 * connectTimeout,

		passwd: emptyPassword,
		state:  StateDisconnected,

		recvMap: map[int32]pendingRequest{},
		watches: map[watchPathType]struct{}{},

		sendActivity: make(chan struct{}, 1),
		stopPinger:   make(chan struct{}),
	}
	for _, option := range options {
		option(c)
	}

	c.sendCond = sync.NewCond(&c.mut)
	c.callbackCond = sync.NewCond(&c.mut)

	c.selector.Init(servers)
	c.setTimeouts(int32(sessionTimeout / time.Millisecond))

	return c, nil
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.state
}

// SessionID returns the current session id, zero when no session was ever established.
func (c *Client) SessionID() int64 {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.sessionID
}

func (c *Client) setState(state State) {
	c.mut.Lock()
	defer c.mut.Unlock()
	c.state = state
}

// setTimeouts derives the read timeout and the ping interval from the negotiated session timeout.
func (c *Client) setTimeouts(sessionTimeoutMs int32) {
	c.sessionTimeoutMs = sessionTimeoutMs
	recv := time.Duration(sessionTimeoutMs) * time.Millisecond * 2 / 3
	c.recvTimeout.Store(int64(recv))
	c.pingInterval = recv / 2
}

func (c *Client) getRecvTimeout() time.Duration {
	return time.Duration(c.recvTimeout.Load())
}

func (c *Client) getPingInterval() time.Duration {
	c.mut.Lock()
	defer c.mut.Unlock()
	return c.pingInterval
}

// nextXid must be called with mut held. Xids stay positive, wrapping to zero.
func (c *Client) nextXid() int32 {
	c.nextXidValue++
	return int32(c.nextXidValue & 0x7fffffff)
}

// Close closes the session and waits for all background goroutines to finish.
// Pending callbacks are called with CodeConnectionLoss.
func (c *Client) Close() {
	c.mut.Lock()
	if c.closing {
		c.mut.Unlock()
		return
	}
	c.closing = true
	c.queueLocked(pendingRequest{
		opcode:   opClose,
		request:  &closeRequest{},
		response: &closeResponse{},
	})
	c.mut.Unlock()

	close(c.stopPinger)
	c.wg.Wait()

	c.setState(StateClosed)
	c.logger.Infof("Shutdown completed")
}
