package zk

import (
	"crypto/sha1"
	"encoding/base64"
)

// ACL is an access control entry in its wire form.
type ACL struct {
	Perms  int32
	Scheme string
	ID     string
}

// Stat is the znode metadata in its wire form.
type Stat struct {
	Czxid          int64 // The zxid of the change that caused this znode to be created.
	Mzxid          int64 // The zxid of the change that last modified this znode.
	Ctime          int64 // The time in milliseconds from epoch when this znode was created.
	Mtime          int64 // The time in milliseconds from epoch when this znode was last modified.
	Version        int32 // The number of changes to the data of this znode.
	Cversion       int32 // The number of changes to the children of this znode.
	Aversion       int32 // The number of changes to the ACL of this znode.
	EphemeralOwner int64 // The session id of the owner of this znode if the znode is an ephemeral node.
	DataLength     int32 // The length of the data field of this znode.
	NumChildren    int32 // The number of children of this znode.
	Pzxid          int64 // The zxid of the change that last modified children of this znode.
}

// WorldACL produces an ACL list containing a single ACL which uses the
// provided permissions, with the scheme "world", and ID "anyone".
func WorldACL(perms int32) []ACL {
	return []ACL{{Perms: perms, Scheme: "world", ID: "anyone"}}
}

// AuthACL produces an ACL list containing a single ACL which uses the
// provided permissions, with the scheme "auth", and ID "", which is used
// by ZooKeeper to represent any authenticated user.
func AuthACL(perms int32) []ACL {
	return []ACL{{Perms: perms, Scheme: "auth", ID: ""}}
}

// DigestACL produces an ACL list with the "digest" scheme for a username and plain password.
func DigestACL(perms int32, user, password string) []ACL {
	userPass := []byte(user + ":" + password)
	h := sha1.New()
	_, _ = h.Write(userPass)
	digest := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return []ACL{{Perms: perms, Scheme: "digest", ID: user + ":" + digest}}
}

type requestHeader struct {
	Xid    int32
	Opcode int32
}

type responseHeader struct {
	Xid  int32
	Zxid int64
	Err  ErrCode
}

type connectRequest struct {
	ProtocolVersion int32
	LastZxidSeen    int64
	TimeOut         int32
	SessionID       int64
	Passwd          []byte
}

type connectResponse struct {
	ProtocolVersion int32
	TimeOut         int32
	SessionID       int64
	Passwd          []byte
}

type pathWatchRequest struct {
	Path  string
	Watch bool
}

type pathRequest struct {
	Path string
}

type statResponse struct {
	Stat Stat
}

// CreateRequest is the wire body of a create call.
type CreateRequest struct {
	Path  string
	Data  []byte
	Acl   []ACL
	Flags int32
}

type createResponse struct {
	Path string
}

// DeleteRequest is the wire body of a delete call.
type DeleteRequest struct {
	Path    string
	Version int32
}

type deleteResponse struct{}

type existsRequest pathWatchRequest
type existsResponse statResponse

type getDataRequest pathWatchRequest

type getDataResponse struct {
	Data []byte
	Stat Stat
}

// SetDataRequest is the wire body of a set data call.
type SetDataRequest struct {
	Path    string
	Data    []byte
	Version int32
}

type setDataResponse statResponse

type getChildren2Request pathWatchRequest

type getChildren2Response struct {
	Children []string
	Stat     Stat
}

type getAclRequest pathRequest

type getAclResponse struct {
	Acl  []ACL
	Stat Stat
}

type setAclRequest struct {
	Path    string
	Acl     []ACL
	Version int32
}

type setAclResponse statResponse

type setAuthRequest struct {
	Type   int32
	Scheme string
	Auth   []byte
}

type setAuthResponse struct{}

type setWatchesRequest struct {
	RelativeZxid int64
	DataWatches  []string
	ExistWatches []string
	ChildWatches []string
}

type setWatchesResponse struct{}

type pingRequest struct{}
type pingResponse struct{}

type closeRequest struct{}
type closeResponse struct{}

type watcherEvent struct {
	Type  EventType
	State State
	Path  string
}
