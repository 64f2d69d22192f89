package keeper

import (
	"time"
)

// Stat is the metadata of a node. It is only produced by the store.
type Stat struct {
	Czxid          int64     // zxid of the change that created the node
	Mzxid          int64     // zxid of the change that last modified the node
	Ctime          time.Time // creation time, millisecond precision
	Mtime          time.Time // last modification time, millisecond precision
	Version        int32     // number of changes to the data
	Cversion       int32     // number of changes to the children
	Aversion       int32     // number of changes to the ACL
	EphemeralOwner int64     // owning session id of an ephemeral node, zero otherwise
	DataLength     int32
	NumChildren    int32
	Pzxid          int64 // zxid of the change that last modified the children
}

// Ephemeral reports whether the node is owned by a session.
func (s *Stat) Ephemeral() bool {
	return s.EphemeralOwner != 0
}
