package zk

import (
	"cmp"
	"slices"
)

// setWatchesBatch is the number of watches re-applied by a single setWatches request.
const setWatchesBatch = 64

// authenticate runs the connect handshake on a new connection.
// It creates a session, or resumes the current one when the server still knows it.
func (c *Client) authenticate(conn NetworkConn) error {
	resp, err := c.exchangeConnect(conn)
	if err != nil {
		return err
	}

	c.mut.Lock()
	defer c.mut.Unlock()

	if resp.SessionID == 0 {
		c.expireSessionLocked()
		return CodeSessionExpired
	}

	resumed := c.sessionID != 0

	c.sessionID = resp.SessionID
	c.passwd = resp.Passwd
	c.setTimeouts(resp.TimeOut)
	c.state = StateHasSession
	c.conn = conn

	if resumed {
		c.logger.Warnf("Connection is reconnected")
		c.pushClientCallbackLocked(c.onReconnecting)
	} else {
		c.logger.Infof("Session established")
		c.pushClientCallbackLocked(c.onEstablished)
	}
	c.pushSessionEventLocked(StateHasSession)

	c.resendCredsLocked()
	c.resendWatchesLocked()
	return nil
}

func (c *Client) exchangeConnect(conn NetworkConn) (connectResponse, error) {
	req := &connectRequest{
		ProtocolVersion: protocolVersion,
		LastZxidSeen:    c.lastZxid,
		TimeOut:         c.sessionTimeoutMs,
		SessionID:       c.sessionID,
		Passwd:          c.passwd,
	}
	timeout := c.getRecvTimeout() * 10

	_ = conn.SetWriteDeadline(timeout)
	_, err := encodeObject[connectRequest](req, &c.writeCodec, conn)
	_ = conn.SetWriteDeadline(0)
	if err != nil {
		return connectResponse{}, err
	}

	var resp connectResponse
	_ = conn.SetReadDeadline(timeout)
	err = decodeObject[connectResponse](&resp, &c.handshakeBuf, conn)
	_ = conn.SetReadDeadline(0)
	return resp, err
}

// expireSessionLocked forgets the session, its watches do not survive it.
// Credentials are kept and are sent on the next session.
func (c *Client) expireSessionLocked() {
	c.logger.Warnf("Session expired")

	c.sessionID = 0
	c.passwd = emptyPassword
	c.lastZxid = 0
	c.state = StateExpired
	c.watches = map[watchPathType]struct{}{}

	c.pushClientCallbackLocked(c.onExpired)
	c.pushSessionEventLocked(StateExpired)
}

func (c *Client) pushClientCallbackLocked(callback func(c *Client)) {
	if callback == nil {
		return
	}
	c.pushCallbackLocked(func() {
		callback(c)
	})
}

func (c *Client) pushSessionEventLocked(state State) {
	if c.watcher == nil {
		return
	}
	ev := Event{Type: EventSession, State: state, Server: c.server}
	c.pushCallbackLocked(func() {
		c.watcher(ev)
	})
}

func (c *Client) resendCredsLocked() {
	for _, cred := range c.creds {
		c.queueLocked(pendingRequest{
			opcode:   opSetAuth,
			request:  &setAuthRequest{Scheme: cred.scheme, Auth: cred.auth},
			response: &setAuthResponse{},
		})
	}
}

// resendWatchesLocked sets the remembered watches again, relative to the last zxid seen,
// so the server fires the events missed while disconnected.
func (c *Client) resendWatchesLocked() {
	keys := make([]watchPathType, 0, len(c.watches))
	for w := range c.watches {
		keys = append(keys, w)
	}
	slices.SortFunc(keys, func(a, b watchPathType) int {
		if n := cmp.Compare(a.path, b.path); n != 0 {
			return n
		}
		return cmp.Compare(a.wType, b.wType)
	})

	for start := 0; start < len(keys); start += setWatchesBatch {
		req := &setWatchesRequest{RelativeZxid: c.lastZxid}
		for _, w := range keys[start:min(start+setWatchesBatch, len(keys))] {
			switch w.wType {
			case watchTypeData:
				req.DataWatches = append(req.DataWatches, w.path)
			case watchTypeExist:
				req.ExistWatches = append(req.ExistWatches, w.path)
			case watchTypeChild:
				req.ChildWatches = append(req.ChildWatches, w.path)
			}
		}
		c.queueLocked(pendingRequest{
			opcode:   opSetWatches,
			request:  req,
			response: &setWatchesResponse{},
		})
	}
}
