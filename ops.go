package zk

// issue submits a request whose response body decodes into R,
// and converts it for callback once the request completes.
func issue[R any, T any](
	c *Client, opcode int32, request any, watch watchPathType,
	callback func(resp T, err error),
	convert func(r *R, zxid int64) T,
) error {
	response := new(R)
	return c.submit(pendingRequest{
		opcode:   opcode,
		request:  request,
		response: response,
		watch:    watch,
		complete: func(zxid int64, err error) {
			if callback == nil {
				return
			}
			if err != nil {
				var empty T
				callback(empty, err)
				return
			}
			callback(convert(response, zxid), nil)
		},
	})
}

func watchRequest(path string, watch bool, wType watchType) watchPathType {
	if !watch {
		return watchPathType{}
	}
	return watchPathType{path: path, wType: wType}
}

type CreateResponse struct {
	Zxid int64
	Path string
}

// Create creates a node. flags is a combination of FlagEphemeral and FlagSequence.
// An error is returned only when the request could not be issued.
func (c *Client) Create(
	path string, data []byte, flags int32, acl []ACL,
	callback func(resp CreateResponse, err error),
) error {
	if err := ValidatePath(path, flags&FlagSequence != 0); err != nil {
		return err
	}
	req := &CreateRequest{Path: path, Data: data, Acl: acl, Flags: flags}
	return issue(c, opCreate, req, watchPathType{}, callback,
		func(r *createResponse, zxid int64) CreateResponse {
			return CreateResponse{Zxid: zxid, Path: r.Path}
		},
	)
}

type GetResponse struct {
	Zxid int64
	Data []byte
	Stat Stat
}

// Get reads the data of a node, and leaves a data watch on it when watch is true.
func (c *Client) Get(
	path string, watch bool,
	callback func(resp GetResponse, err error),
) error {
	if err := ValidatePath(path, false); err != nil {
		return err
	}
	req := &getDataRequest{Path: path, Watch: watch}
	return issue(c, opGetData, req, watchRequest(path, watch, watchTypeData), callback,
		func(r *getDataResponse, zxid int64) GetResponse {
			return GetResponse{Zxid: zxid, Data: r.Data, Stat: r.Stat}
		},
	)
}

type ExistsResponse struct {
	Zxid int64
	Stat Stat
}

// Exists reads the stat of a node. A node that does not exist is reported as CodeNoNode,
// and an exists watch is still left on the path when watch is true.
func (c *Client) Exists(
	path string, watch bool,
	callback func(resp ExistsResponse, err error),
) error {
	if err := ValidatePath(path, false); err != nil {
		return err
	}
	req := &existsRequest{Path: path, Watch: watch}
	return issue(c, opExists, req, watchRequest(path, watch, watchTypeExist), callback,
		func(r *existsResponse, zxid int64) ExistsResponse {
			return ExistsResponse{Zxid: zxid, Stat: r.Stat}
		},
	)
}

type SetResponse struct {
	Zxid int64
	Stat Stat
}

// Set writes the data of a node if version matches, -1 matches any version.
func (c *Client) Set(
	path string, data []byte, version int32,
	callback func(resp SetResponse, err error),
) error {
	if err := ValidatePath(path, false); err != nil {
		return err
	}
	req := &SetDataRequest{Path: path, Data: data, Version: version}
	return issue(c, opSetData, req, watchPathType{}, callback,
		func(r *setDataResponse, zxid int64) SetResponse {
			return SetResponse{Zxid: zxid, Stat: r.Stat}
		},
	)
}

type DeleteResponse struct {
	Zxid int64
}

// Delete removes a node if version matches, -1 matches any version.
func (c *Client) Delete(
	path string, version int32,
	callback func(resp DeleteResponse, err error),
) error {
	if err := ValidatePath(path, false); err != nil {
		return err
	}
	req := &DeleteRequest{Path: path, Version: version}
	return issue(c, opDelete, req, watchPathType{}, callback,
		func(r *deleteResponse, zxid int64) DeleteResponse {
			return DeleteResponse{Zxid: zxid}
		},
	)
}

type ChildrenResponse struct {
	Zxid     int64
	Children []string
	Stat     Stat
}

// Children lists the children of a node, and leaves a child watch on it when watch is true.
func (c *Client) Children(
	path string, watch bool,
	callback func(resp ChildrenResponse, err error),
) error {
	if err := ValidatePath(path, false); err != nil {
		return err
	}
	req := &getChildren2Request{Path: path, Watch: watch}
	return issue(c, opGetChildren2, req, watchRequest(path, watch, watchTypeChild), callback,
		func(r *getChildren2Response, zxid int64) ChildrenResponse {
			return ChildrenResponse{Zxid: zxid, Children: r.Children, Stat: r.Stat}
		},
	)
}

type GetACLResponse struct {
	Zxid int64
	ACL  []ACL
	Stat Stat
}

// GetACL reads the ACL list of a node.
func (c *Client) GetACL(
	path string,
	callback func(resp GetACLResponse, err error),
) error {
	if err := ValidatePath(path, false); err != nil {
		return err
	}
	req := &getAclRequest{Path: path}
	return issue(c, opGetAcl, req, watchPathType{}, callback,
		func(r *getAclResponse, zxid int64) GetACLResponse {
			return GetACLResponse{Zxid: zxid, ACL: r.Acl, Stat: r.Stat}
		},
	)
}

type SetACLResponse struct {
	Zxid int64
	Stat Stat
}

// SetACL replaces the ACL list of a node.
// version is the ACL version (Stat.Aversion), not the data version.
func (c *Client) SetACL(
	path string, acl []ACL, version int32,
	callback func(resp SetACLResponse, err error),
) error {
	if err := ValidatePath(path, false); err != nil {
		return err
	}
	req := &setAclRequest{Path: path, Acl: acl, Version: version}
	return issue(c, opSetAcl, req, watchPathType{}, callback,
		func(r *setAclResponse, zxid int64) SetACLResponse {
			return SetACLResponse{Zxid: zxid, Stat: r.Stat}
		},
	)
}

type AddAuthResponse struct {
	Zxid int64
}

// AddAuth adds credentials to the session, usually the "digest" scheme
// with auth = "username:password" (the password is not hashed).
// Credentials are sent again after every reconnect.
func (c *Client) AddAuth(
	scheme string, auth []byte,
	callback func(resp AddAuthResponse, err error),
) error {
	req := &setAuthRequest{Scheme: scheme, Auth: auth}
	return issue(c, opSetAuth, req, watchPathType{}, callback,
		func(r *setAuthResponse, zxid int64) AddAuthResponse {
			return AddAuthResponse{Zxid: zxid}
		},
	)
}
