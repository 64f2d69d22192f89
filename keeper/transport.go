package keeper

import (
	zk "github.com/QuangTung97/zkdual"
)

//go:generate mockgen -destination=mock_keeper/mock_transport.go -package=mock_keeper . Transport

// Transport is the asynchronous store client the Conn issues calls on.
// A returned error means the call was not issued and its callback will never run.
// Outcome failures are passed to the callback as a zk.ErrCode.
type Transport interface {
	Create(path string, data []byte, flags int32, acl []zk.ACL, callback func(resp zk.CreateResponse, err error)) error
	Get(path string, watch bool, callback func(resp zk.GetResponse, err error)) error
	Exists(path string, watch bool, callback func(resp zk.ExistsResponse, err error)) error
	Set(path string, data []byte, version int32, callback func(resp zk.SetResponse, err error)) error
	Delete(path string, version int32, callback func(resp zk.DeleteResponse, err error)) error
	Children(path string, watch bool, callback func(resp zk.ChildrenResponse, err error)) error
	GetACL(path string, callback func(resp zk.GetACLResponse, err error)) error
	SetACL(path string, acl []zk.ACL, version int32, callback func(resp zk.SetACLResponse, err error)) error
	AddAuth(scheme string, auth []byte, callback func(resp zk.AddAuthResponse, err error)) error

	State() zk.State
	Close()
}

// WatchingTransport is a Transport that accepts the session watcher after it is created.
type WatchingTransport interface {
	Transport
	SetWatcher(watcher func(ev zk.Event))
}

var _ Transport = (*zk.Client)(nil)
