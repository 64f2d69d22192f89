package keeper

import (
	"errors"

	zk "github.com/QuangTung97/zkdual"
)

// outcome is the result of a single call, shared by the blocking and the callback paths.
type outcome[T any] struct {
	value T
	code  Code
	err   error
}

func succeeded[T any](value T) outcome[T] {
	return outcome[T]{value: value, code: OK}
}

func failed[T any](err error) outcome[T] {
	return outcome[T]{code: codeOf(err), err: err}
}

// complete converts a transport response into an outcome and passes it to done.
func complete[R any, T any](done func(outcome[T]), decode func(resp R) T) func(resp R, err error) {
	return func(resp R, err error) {
		if err != nil {
			done(failed[T](err))
			return
		}
		done(succeeded(decode(resp)))
	}
}

// dispatch issues a call on the transport. Without deliver it blocks until the outcome arrives
// and returns it, translated on failure. With deliver it returns at once and the outcome is
// passed to deliver on the transport's callback goroutine.
// Failures to issue the call are translated and returned in both cases.
//
// A blocking call must not be made from a completion handler or a watcher,
// the transport could not deliver its outcome.
func dispatch[T any](
	c *Conn, req *request,
	issue func(done func(outcome[T])) error,
	deliver func(outcome[T]),
) (T, error) {
	var empty T

	if deliver != nil {
		if err := issue(deliver); err != nil {
			return empty, c.translate(err, req)
		}
		return empty, nil
	}

	ch := make(chan outcome[T], 1)
	if err := issue(func(o outcome[T]) {
		ch <- o
	}); err != nil {
		return empty, c.translate(err, req)
	}

	o := <-ch
	if o.err != nil {
		return empty, c.translate(o.err, req)
	}
	return o.value, nil
}

func (c *Conn) translate(err error, req *request) error {
	result := translate(err, req)
	if _, ok := result.(*Error); !ok {
		c.logger.Warnf("Unrecognized failure of %s %q: %v", req.op, req.path, err)
	}
	return result
}

// Create creates a node and returns its path, which includes the suffix of sequential modes.
func (c *Conn) Create(path string, data []byte, opts *CreateOptions) (string, error) {
	req, err := c.normalizeCreate(path, data, opts, callSite())
	if err != nil {
		return "", err
	}

	var deliver func(outcome[string])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[string]) {
			cb.ProcessResult(o.code, req.path, req.context, o.value)
		}
	}

	return dispatch(c, req, func(done func(outcome[string])) error {
		return c.transport.Create(
			req.path, req.data, req.mode.flags(), encodeACL(req.acl),
			complete(done, func(resp zk.CreateResponse) string {
				return resp.Path
			}),
		)
	}, deliver)
}

type dataResult struct {
	data []byte
	stat *Stat
}

// Get returns the payload and Stat of a node.
func (c *Conn) Get(path string, opts *GetOptions) ([]byte, *Stat, error) {
	req, err := normalizeGet(path, opts, callSite())
	if err != nil {
		return nil, nil, err
	}

	var deliver func(outcome[dataResult])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[dataResult]) {
			cb.ProcessResult(o.code, req.path, req.context, o.value.data, o.value.stat)
		}
	}

	result, err := dispatch(c, req, func(done func(outcome[dataResult])) error {
		return c.transport.Get(
			req.path, c.watchArg(req),
			complete(done, func(resp zk.GetResponse) dataResult {
				return dataResult{data: decodeData(resp.Data), stat: decodeStat(resp.Stat)}
			}),
		)
	}, deliver)
	return result.data, result.stat, err
}

// Exists returns the Stat of a node, or nil without an error when the node does not exist.
// With a callback, a missing node is delivered as the NoNode code and a nil Stat.
func (c *Conn) Exists(path string, opts *ExistsOptions) (*Stat, error) {
	req, err := normalizeExists(path, opts, callSite())
	if err != nil {
		return nil, err
	}

	var deliver func(outcome[*Stat])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[*Stat]) {
			cb.ProcessResult(o.code, req.path, req.context, o.value)
		}
	}

	stat, err := dispatch(c, req, func(done func(outcome[*Stat])) error {
		return c.transport.Exists(
			req.path, c.watchArg(req),
			complete(done, func(resp zk.ExistsResponse) *Stat {
				return decodeStat(resp.Stat)
			}),
		)
	}, deliver)
	if errors.Is(err, ErrNoNode) {
		return nil, nil
	}
	return stat, err
}

// Set replaces the payload of a node and returns its new Stat.
func (c *Conn) Set(path string, data []byte, opts *SetOptions) (*Stat, error) {
	req, err := normalizeSet(path, data, opts, callSite())
	if err != nil {
		return nil, err
	}

	var deliver func(outcome[*Stat])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[*Stat]) {
			cb.ProcessResult(o.code, req.path, req.context, o.value)
		}
	}

	return dispatch(c, req, func(done func(outcome[*Stat])) error {
		return c.transport.Set(
			req.path, req.data, req.version,
			complete(done, func(resp zk.SetResponse) *Stat {
				return decodeStat(resp.Stat)
			}),
		)
	}, deliver)
}

// Delete removes a node.
func (c *Conn) Delete(path string, opts *DeleteOptions) error {
	req, err := normalizeDelete(path, opts, callSite())
	if err != nil {
		return err
	}

	var deliver func(outcome[struct{}])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[struct{}]) {
			cb.ProcessResult(o.code, req.path, req.context)
		}
	}

	_, err = dispatch(c, req, func(done func(outcome[struct{}])) error {
		return c.transport.Delete(
			req.path, req.version,
			complete(done, func(resp zk.DeleteResponse) struct{} {
				return struct{}{}
			}),
		)
	}, deliver)
	return err
}

// Children returns the child names of a node, in the order the store returns them.
func (c *Conn) Children(path string, opts *ChildrenOptions) ([]string, error) {
	req, err := normalizeChildren(path, opts, callSite())
	if err != nil {
		return nil, err
	}

	var deliver func(outcome[[]string])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[[]string]) {
			cb.ProcessResult(o.code, req.path, req.context, o.value)
		}
	}

	return dispatch(c, req, func(done func(outcome[[]string])) error {
		return c.transport.Children(
			req.path, c.watchArg(req),
			complete(done, func(resp zk.ChildrenResponse) []string {
				return decodeChildren(resp.Children)
			}),
		)
	}, deliver)
}

type aclResult struct {
	acl  []ACL
	stat *Stat
}

// GetACL returns the ACL list and Stat of a node.
func (c *Conn) GetACL(path string, opts *GetACLOptions) ([]ACL, *Stat, error) {
	req, err := normalizeGetACL(path, opts, callSite())
	if err != nil {
		return nil, nil, err
	}

	var deliver func(outcome[aclResult])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[aclResult]) {
			cb.ProcessResult(o.code, req.path, req.context, o.value.acl, o.value.stat)
		}
	}

	result, err := dispatch(c, req, func(done func(outcome[aclResult])) error {
		return c.transport.GetACL(
			req.path,
			complete(done, func(resp zk.GetACLResponse) aclResult {
				return aclResult{acl: decodeACL(resp.ACL), stat: decodeStat(resp.Stat)}
			}),
		)
	}, deliver)
	return result.acl, result.stat, err
}

// SetACL replaces the ACL list of a node and returns its new Stat.
// The version is compared with the ACL version of the node.
func (c *Conn) SetACL(path string, opts *SetACLOptions) (*Stat, error) {
	req, err := normalizeSetACL(path, opts, callSite())
	if err != nil {
		return nil, err
	}

	var deliver func(outcome[*Stat])
	if req.async {
		cb := opts.Callback
		deliver = func(o outcome[*Stat]) {
			cb.ProcessResult(o.code, req.path, req.context, o.value)
		}
	}

	return dispatch(c, req, func(done func(outcome[*Stat])) error {
		return c.transport.SetACL(
			req.path, encodeACL(req.acl), req.version,
			complete(done, func(resp zk.SetACLResponse) *Stat {
				return decodeStat(resp.Stat)
			}),
		)
	}, deliver)
}

// AddAuth adds credentials to the session, e.g. "user:password" for the digest scheme.
func (c *Conn) AddAuth(auth []byte, opts *AddAuthOptions) error {
	req, err := normalizeAddAuth(opts, callSite())
	if err != nil {
		return err
	}

	_, err = dispatch(c, req, func(done func(outcome[struct{}])) error {
		return c.transport.AddAuth(
			req.scheme, auth,
			complete(done, func(resp zk.AddAuthResponse) struct{} {
				return struct{}{}
			}),
		)
	}, nil)
	return err
}
