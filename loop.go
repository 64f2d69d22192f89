package zk

import (
	"sync"
	"time"
)

const connectTimeout = 1 * time.Second

type dialResult int

const (
	dialConnected dialResult = iota + 1
	dialShutdown
	dialFailed
	dialFailedRound // every server of the list failed in a row
)

// runConnections keeps a connection to one of the servers until the client is closed.
func (c *Client) runConnections() {
	for {
		conn, ok := c.waitForConnection()
		if !ok {
			return
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.runSender(conn, &wg)
		}()
		go func() {
			defer wg.Done()
			c.runReceiver(conn, &wg)
		}()
		wg.Wait()
	}
}

func (c *Client) waitForConnection() (NetworkConn, bool) {
	for {
		conn, result := c.dialNext()
		switch result {
		case dialConnected:
			return conn, true
		case dialShutdown:
			c.closeOnShutdown()
			c.stopCallbacks()
			return nil, false
		case dialFailedRound:
			time.Sleep(c.dialRetryDuration)
		default:
		}
	}
}

func (c *Client) dialNext() (NetworkConn, dialResult) {
	c.mut.Lock()
	if c.closing {
		c.mut.Unlock()
		return nil, dialShutdown
	}
	c.state = StateConnecting
	c.mut.Unlock()

	next := c.selector.Next()
	addr := next.Server
	c.logger.Infof("Connecting to address: '%s'", addr)

	conn, err := c.dialFunc(addr, connectTimeout)
	if err != nil {
		c.setState(StateDisconnected)
		c.logger.Warnf("Failed to connect to server: '%s', error: %v", addr, err)
		if next.RetryStart {
			return nil, dialFailedRound
		}
		return nil, dialFailed
	}

	c.selector.NotifyConnected()
	c.logger.Infof("Connected to server: '%s'", addr)

	c.mut.Lock()
	c.state = StateConnected
	c.server = addr
	c.mut.Unlock()

	if err := c.authenticate(conn); err != nil {
		c.setState(StateDisconnected)
		_ = conn.Close()
		c.logger.Warnf("Failed to authenticate to server: '%s', error: %v", addr, err)
		return nil, dialFailed
	}

	c.mut.Lock()
	defer c.mut.Unlock()
	if c.closing {
		return conn, dialShutdown
	}
	return conn, dialConnected
}

func (c *Client) closeOnShutdown() {
	if conn, ok := c.dropConnection(nil); ok {
		_ = conn.Close()
	}
}

func (c *Client) closeOnError(err error, flushed *sync.WaitGroup) {
	if conn, ok := c.dropConnection(flushed); ok {
		c.logger.Warnf("Close connection with error: %v", err)
		_ = conn.Close()
	}
}

// stopped handles the end of a connection seen by the sender or the receiver.
func (c *Client) stopped(res ioResult, flushed *sync.WaitGroup) bool {
	switch {
	case res.closed:
		c.closeOnShutdown()
		return true
	case res.broken:
		c.closeOnError(res.err, flushed)
		return true
	default:
		return false
	}
}

func (c *Client) runSender(conn NetworkConn, flushed *sync.WaitGroup) {
	for {
		batch, ok := c.takeSendBatch()
		if !ok {
			return
		}

		select {
		case c.sendActivity <- struct{}{}:
		default:
		}

		for _, req := range batch {
			if c.stopped(c.writePacket(conn, req), flushed) {
				return
			}
		}
	}
}

func (c *Client) runReceiver(conn NetworkConn, flushed *sync.WaitGroup) {
	for {
		if c.stopped(c.readPacket(conn), flushed) {
			return
		}
	}
}

// stopCallbacks reports StateClosed to the watcher, the callback goroutine
// exits after the callbacks queued before it.
func (c *Client) stopCallbacks() {
	c.mut.Lock()
	defer c.mut.Unlock()
	c.state = StateClosed
	c.pushSessionEventLocked(StateClosed)
	c.callbacksDone = true
	c.callbackCond.Signal()
}

func (c *Client) takeCallbacks() ([]func(), bool) {
	c.mut.Lock()
	defer c.mut.Unlock()

	for len(c.callbackQueue) == 0 {
		if c.callbacksDone {
			return nil, false
		}
		c.callbackCond.Wait()
	}

	callbacks := c.callbackQueue
	c.callbackQueue = nil
	return callbacks, true
}

func (c *Client) runCallbacks() {
	for {
		callbacks, ok := c.takeCallbacks()
		if !ok {
			return
		}
		for _, fn := range callbacks {
			fn()
		}
	}
}

// runPinger sends a ping when nothing was sent for a whole ping interval.
func (c *Client) runPinger() {
	timer := time.NewTimer(c.getPingInterval())
	defer timer.Stop()

	for {
		select {
		case <-c.stopPinger:
			return

		case <-c.sendActivity:
			if !timer.Stop() {
				<-timer.C
			}

		case <-timer.C:
			_ = c.submit(pendingRequest{
				opcode:   opPing,
				request:  &pingRequest{},
				response: &pingResponse{},
			})
		}
		timer.Reset(c.getPingInterval())
	}
}
