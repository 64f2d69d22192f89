package zk

import (
	"fmt"
)

const protocolVersion = 0

// DefaultPort is appended to a server address that has no explicit port.
const DefaultPort = 2181

const (
	opNotify       int32 = 0
	opCreate       int32 = 1
	opDelete       int32 = 2
	opExists       int32 = 3
	opGetData      int32 = 4
	opSetData      int32 = 5
	opGetAcl       int32 = 6
	opSetAcl       int32 = 7
	opGetChildren  int32 = 8
	opSync         int32 = 9
	opPing         int32 = 11
	opGetChildren2 int32 = 12
	opCheck        int32 = 13
	opMulti        int32 = 14
	opClose        int32 = -11
	opSetAuth      int32 = 100
	opSetWatches   int32 = 101
)

// Flags for Create.
const (
	FlagEphemeral int32 = 1
	FlagSequence  int32 = 2
)

// Permission bits of an ACL entry.
const (
	PermRead int32 = 1 << iota
	PermWrite
	PermCreate
	PermDelete
	PermAdmin
	PermAll = 0x1f
)

var emptyPassword = []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

// EventType is the type of watch event sent by the server.
type EventType int32

const (
	EventNodeCreated         EventType = 1
	EventNodeDeleted         EventType = 2
	EventNodeDataChanged     EventType = 3
	EventNodeChildrenChanged EventType = 4

	EventSession     EventType = -1
	EventNotWatching EventType = -2
)

var eventNames = map[EventType]string{
	EventNodeCreated:         "EventNodeCreated",
	EventNodeDeleted:         "EventNodeDeleted",
	EventNodeDataChanged:     "EventNodeDataChanged",
	EventNodeChildrenChanged: "EventNodeChildrenChanged",
	EventSession:             "EventSession",
	EventNotWatching:         "EventNotWatching",
}

func (t EventType) String() string {
	if name := eventNames[t]; name != "" {
		return name
	}
	return "Unknown"
}

// State is the state of the client connection, also used as the keeper state of session events.
type State int32

const (
	StateUnknown           State = -1
	StateDisconnected      State = 0
	StateConnecting        State = 1
	StateSyncConnected     State = 3
	StateAuthFailed        State = 4
	StateConnectedReadOnly State = 5
	StateSaslAuthenticated State = 6
	StateExpired           State = -112

	StateConnected  State = 100
	StateHasSession State = 101
	StateClosed     State = 102
)

var stateNames = map[State]string{
	StateUnknown:           "StateUnknown",
	StateDisconnected:      "StateDisconnected",
	StateConnecting:        "StateConnecting",
	StateSyncConnected:     "StateSyncConnected",
	StateAuthFailed:        "StateAuthFailed",
	StateConnectedReadOnly: "StateConnectedReadOnly",
	StateSaslAuthenticated: "StateSaslAuthenticated",
	StateExpired:           "StateExpired",
	StateConnected:         "StateConnected",
	StateHasSession:        "StateHasSession",
	StateClosed:            "StateClosed",
}

func (s State) String() string {
	if name := stateNames[s]; name != "" {
		return name
	}
	return "Unknown"
}

// ErrCode is the numeric outcome code returned by the server for a request.
// A non-zero ErrCode is itself an error, so outcomes can be inspected with errors.As.
type ErrCode int32

const (
	CodeOK ErrCode = 0

	// system and server-side errors
	CodeSystemError          ErrCode = -1
	CodeRuntimeInconsistency ErrCode = -2
	CodeDataInconsistency    ErrCode = -3
	CodeConnectionLoss       ErrCode = -4
	CodeMarshallingError     ErrCode = -5
	CodeUnimplemented        ErrCode = -6
	CodeOperationTimeout     ErrCode = -7
	CodeBadArguments         ErrCode = -8
	CodeInvalidState         ErrCode = -9

	// API errors
	CodeAPIError                ErrCode = -100
	CodeNoNode                  ErrCode = -101
	CodeNoAuth                  ErrCode = -102
	CodeBadVersion              ErrCode = -103
	CodeNoChildrenForEphemerals ErrCode = -108
	CodeNodeExists              ErrCode = -110
	CodeNotEmpty                ErrCode = -111
	CodeSessionExpired          ErrCode = -112
	CodeInvalidCallback         ErrCode = -113
	CodeInvalidACL              ErrCode = -114
	CodeAuthFailed              ErrCode = -115
	CodeClosing                 ErrCode = -116
	CodeNothing                 ErrCode = -117
	CodeSessionMoved            ErrCode = -118
)

var codeNames = map[ErrCode]string{
	CodeOK:                      "ok",
	CodeSystemError:             "system error",
	CodeRuntimeInconsistency:    "runtime inconsistency",
	CodeDataInconsistency:       "data inconsistency",
	CodeConnectionLoss:          "connection loss",
	CodeMarshallingError:        "marshalling error",
	CodeUnimplemented:           "unimplemented",
	CodeOperationTimeout:        "operation timeout",
	CodeBadArguments:            "bad arguments",
	CodeInvalidState:            "invalid state",
	CodeAPIError:                "api error",
	CodeNoNode:                  "node does not exist",
	CodeNoAuth:                  "not authenticated",
	CodeBadVersion:              "version conflict",
	CodeNoChildrenForEphemerals: "ephemeral nodes may not have children",
	CodeNodeExists:              "node already exists",
	CodeNotEmpty:                "node has children",
	CodeSessionExpired:          "session has been expired by the server",
	CodeInvalidCallback:         "invalid callback",
	CodeInvalidACL:              "invalid ACL specified",
	CodeAuthFailed:              "client authentication failed",
	CodeClosing:                 "zookeeper is closing",
	CodeNothing:                 "no server responses to process",
	CodeSessionMoved:            "session moved to another server, so operation is ignored",
}

func (c ErrCode) Error() string {
	if name, ok := codeNames[c]; ok {
		return fmt.Sprintf("zk: %s (code %d)", name, int32(c))
	}
	return fmt.Sprintf("zk: unknown error (code %d)", int32(c))
}

// toError returns nil for CodeOK.
func (c ErrCode) toError() error {
	if c == CodeOK {
		return nil
	}
	return c
}
