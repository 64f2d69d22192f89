// Package zk is the native asynchronous transport for the ZooKeeper coordination service.
//
// Every call is non-blocking: it is queued to the connection and its completion callback is
// invoked later on the client's handler goroutine. Failures reported by the server are
// delivered as ErrCode values; blocking calls are built on top of this in package keeper.
package zk

import (
	"errors"
)

// ErrInvalidPath indicates that an operation was being attempted on
// an invalid path. (e.g. empty path).
var ErrInvalidPath = errors.New("zk: invalid path")

const (
	bufferSize = 1536 * 1024
)

type watchType int

const (
	watchTypeData watchType = iota
	watchTypeExist
	watchTypeChild
)

type watchPathType struct {
	path  string
	wType watchType
}

type authCreds struct {
	scheme string
	auth   []byte
}

// Event is a Znode event sent by the server, or a session event produced by the client.
// Refer to EventType for more details.
type Event struct {
	Type   EventType
	State  State
	Path   string // For non-session events, the path of the watched node.
	Server string // For session events, the server the client is connected to.
}

// computeWatchTypes returns the kinds of watches that are consumed by an event of type t.
func computeWatchTypes(t EventType) []watchType {
	switch t {
	case EventNodeCreated:
		return []watchType{watchTypeExist}
	case EventNodeDataChanged:
		return []watchType{watchTypeExist, watchTypeData}
	case EventNodeChildrenChanged:
		return []watchType{watchTypeChild}
	case EventNodeDeleted:
		return []watchType{watchTypeExist, watchTypeData, watchTypeChild}
	default:
		return nil
	}
}
