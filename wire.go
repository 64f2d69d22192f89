package zk

import (
	"encoding/binary"
	"errors"
	"io"
)

const responseHeaderSize = 16

var errInvalidMessageLength = errors.New("zk: invalid message length")

// ioResult is what the sender or the receiver saw on the connection.
// closed means the close request was answered, broken means the connection must be dropped.
type ioResult struct {
	closed bool
	broken bool
	err    error
}

func ioOK() ioResult {
	return ioResult{}
}

func ioBroken(err error) ioResult {
	return ioResult{broken: true, err: err}
}

// writePacket writes one length prefixed request: the request header followed by the request body.
func (c *Client) writePacket(conn NetworkConn, req pendingRequest) ioResult {
	buf := c.writeCodec.buf[:]

	n, err := encodePacket(buf[4:], &requestHeader{Xid: req.xid, Opcode: req.opcode})
	if err != nil {
		return ioBroken(err)
	}
	bodyLen, err := encodePacket(buf[4+n:], req.request)
	if err != nil {
		return ioBroken(err)
	}
	n += bodyLen
	binary.BigEndian.PutUint32(buf[:4], uint32(n))

	_ = conn.SetWriteDeadline(c.getRecvTimeout())
	_, err = conn.Write(buf[:4+n])
	_ = conn.SetWriteDeadline(0)
	if err != nil {
		return ioBroken(err)
	}
	return ioOK()
}

// readPacket reads one length prefixed packet and dispatches it by its xid.
func (c *Client) readPacket(conn NetworkConn) ioResult {
	buf := c.readCodec.buf[:]
	timeout := c.getRecvTimeout()

	_ = conn.SetReadDeadline(timeout)
	if _, err := io.ReadFull(conn, buf[:4]); err != nil {
		return ioBroken(err)
	}

	size := int(binary.BigEndian.Uint32(buf[:4]))
	if size < responseHeaderSize || size > len(buf) {
		return ioBroken(errInvalidMessageLength)
	}

	_ = conn.SetReadDeadline(timeout)
	_, err := io.ReadFull(conn, buf[:size])
	_ = conn.SetReadDeadline(0)
	if err != nil {
		return ioBroken(err)
	}

	var header responseHeader
	if _, err := decodePacket(buf[:responseHeaderSize], &header); err != nil {
		return ioBroken(err)
	}
	if header.Zxid > 0 {
		c.lastZxid = header.Zxid
	}

	body := buf[responseHeaderSize:size]
	switch {
	case header.Xid == watchEventXid:
		return c.receiveWatchEvent(body)
	case header.Xid == pingRequestXid:
		return ioOK()
	case header.Xid < 0:
		c.logger.Warnf("Xid < 0 (%d) but not ping or watcher event", header.Xid)
		return ioOK()
	default:
		return c.receiveResponse(header, body)
	}
}

func (c *Client) receiveResponse(header responseHeader, body []byte) ioResult {
	req, ok := c.takeWaiting(header.Xid)
	if !ok {
		c.logger.Warnf("Response for unknown request with xid %d", header.Xid)
		return ioOK()
	}
	if req.opcode == opClose {
		return ioResult{closed: true}
	}

	result := ioOK()
	err := header.Err.toError()
	switch {
	case err == nil:
		if _, decodeErr := decodePacket(body, req.response); decodeErr != nil {
			err = CodeMarshallingError
			result = ioBroken(decodeErr)
		}
	case header.Err == CodeSessionExpired:
		result = ioBroken(err)
	}

	c.mut.Lock()
	defer c.mut.Unlock()

	c.rememberWatch(req, err)
	c.pushCallbackLocked(req.finish(header.Zxid, err))
	return result
}

func (c *Client) receiveWatchEvent(body []byte) ioResult {
	var wire watcherEvent
	if _, err := decodePacket(body, &wire); err != nil {
		return ioBroken(err)
	}
	ev := Event{Type: wire.Type, State: wire.State, Path: wire.Path}

	c.mut.Lock()
	defer c.mut.Unlock()

	// a watch is one-shot, the application must set it again
	c.forgetWatches(ev)

	if c.watcher != nil {
		c.pushCallbackLocked(func() {
			c.watcher(ev)
		})
	}
	return ioOK()
}
