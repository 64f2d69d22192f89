package zk

import (
	"errors"
	"slices"
	"sync"
)

const watchEventXid int32 = -1
const pingRequestXid int32 = -2

type pendingRequest struct {
	xid      int32
	opcode   int32
	request  any
	response any

	watch watchPathType // empty path means no watch

	// complete is nil for requests issued by the client itself.
	complete func(zxid int64, err error)
}

func (r pendingRequest) finish(zxid int64, err error) func() {
	return func() {
		if r.complete != nil {
			r.complete(zxid, err)
		}
	}
}

// submit queues a request issued by the application.
// The only error is CodeSessionExpired, after Close was called.
func (c *Client) submit(req pendingRequest) error {
	c.mut.Lock()
	defer c.mut.Unlock()

	if c.closing {
		c.logger.Warnf("Zookeeper client being accessed after Close()")
		return CodeSessionExpired
	}

	if req.opcode == opSetAuth {
		auth := req.request.(*setAuthRequest)
		c.creds = append(c.creds, authCreds{scheme: auth.Scheme, auth: auth.Auth})
	}

	c.queueLocked(req)
	return nil
}

// queueLocked assigns the xid, then either queues the request for the sender
// or, without a session, fails it right away with CodeConnectionLoss.
func (c *Client) queueLocked(req pendingRequest) {
	if req.opcode == opPing {
		req.xid = pingRequestXid
	} else {
		req.xid = c.nextXid()
	}

	if c.state != StateHasSession {
		c.pushCallbackLocked(req.finish(0, CodeConnectionLoss))
		return
	}

	c.sendQueue = append(c.sendQueue, req)
	c.sendCond.Signal()
}

func (c *Client) pushCallbackLocked(fn func()) {
	c.callbackQueue = append(c.callbackQueue, fn)
	c.callbackCond.Signal()
}

// takeSendBatch waits for queued requests and registers them as waiting for a response.
// It returns false once the session is lost or the client is closing with nothing left to send.
func (c *Client) takeSendBatch() ([]pendingRequest, bool) {
	c.mut.Lock()
	defer c.mut.Unlock()

	for c.state == StateHasSession {
		if len(c.sendQueue) > 0 {
			batch := c.sendQueue
			c.sendQueue = nil
			for _, req := range batch {
				if req.xid != pingRequestXid {
					c.recvMap[req.xid] = req
				}
			}
			return batch, true
		}
		if c.closing {
			break
		}
		c.sendCond.Wait()
	}
	return nil, false
}

func (c *Client) takeWaiting(xid int32) (pendingRequest, bool) {
	c.mut.Lock()
	defer c.mut.Unlock()

	req, ok := c.recvMap[xid]
	delete(c.recvMap, xid)
	return req, ok
}

// rememberWatch records a watch left by a completed request, so it can be set again after a reconnect.
func (c *Client) rememberWatch(req pendingRequest, err error) {
	if req.watch.path == "" {
		return
	}
	// an exists watch is also left on a node that does not exist yet
	if err != nil && (req.opcode != opExists || !errors.Is(err, CodeNoNode)) {
		return
	}
	c.watches[req.watch] = struct{}{}
}

func (c *Client) forgetWatches(ev Event) {
	for _, wType := range computeWatchTypes(ev.Type) {
		delete(c.watches, watchPathType{path: ev.Path, wType: wType})
	}
}

// failPendingLocked moves the session to state, and fails every waiting or queued
// request with CodeConnectionLoss, in the order the requests were issued.
// It returns the connection that was in use.
func (c *Client) failPendingLocked(state State, flushed *sync.WaitGroup) NetworkConn {
	c.state = state
	conn := c.conn
	c.conn = nil

	pending := make([]pendingRequest, 0, len(c.recvMap)+len(c.sendQueue))
	for _, req := range c.recvMap {
		pending = append(pending, req)
	}
	pending = append(pending, c.sendQueue...)
	c.recvMap = map[int32]pendingRequest{}
	c.sendQueue = nil

	slices.SortFunc(pending, func(a, b pendingRequest) int {
		return int(a.xid - b.xid)
	})
	for _, req := range pending {
		c.callbackQueue = append(c.callbackQueue, req.finish(0, CodeConnectionLoss))
	}
	c.pushSessionEventLocked(state)

	if flushed != nil {
		flushed.Add(1)
		c.callbackQueue = append(c.callbackQueue, flushed.Done)
	}

	c.callbackCond.Signal()
	c.sendCond.Signal()
	return conn
}

// dropConnection ends the current connection of a live session.
// When flushed is not nil, it is released after the failed callbacks have run.
func (c *Client) dropConnection(flushed *sync.WaitGroup) (NetworkConn, bool) {
	c.mut.Lock()
	defer c.mut.Unlock()

	if c.state != StateHasSession {
		return nil, false
	}
	return c.failPendingLocked(StateDisconnected, flushed), true
}
