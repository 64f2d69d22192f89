package keeper

// Op names a primitive operation.
type Op string

const (
	OpCreate   Op = "create"
	OpGet      Op = "get"
	OpExists   Op = "exists"
	OpSet      Op = "set"
	OpDelete   Op = "delete"
	OpChildren Op = "children"
	OpGetACL   Op = "get_acl"
	OpSetACL   Op = "set_acl"
	OpAddAuth  Op = "add_auth"
)

// AnyVersion matches every version of a node.
const AnyVersion int32 = -1

// Version returns a pointer to v, for the Version field of options.
func Version(v int32) *int32 {
	return &v
}

// DefaultAuthScheme is used by AddAuth when no scheme is given.
const DefaultAuthScheme = "digest"

// CreateOptions configures Create. A nil *CreateOptions uses every default.
type CreateOptions struct {
	// ACL of the new node, the Conn default ACL when nil. Must not be empty when set.
	ACL []ACL

	// Mode defaults to Ephemeral. It must not be combined with the Ephemeral and Sequential flags.
	Mode CreateMode

	Ephemeral  bool
	Sequential bool

	Callback StringCallback
	Context  any
}

// GetOptions configures Get.
type GetOptions struct {
	Watch    bool
	Callback DataCallback
	Context  any
}

// ExistsOptions configures Exists.
type ExistsOptions struct {
	Watch    bool
	Callback StatCallback
	Context  any
}

// SetOptions configures Set.
type SetOptions struct {
	// Version the node must have, any version when nil.
	Version  *int32
	Callback StatCallback
	Context  any
}

// DeleteOptions configures Delete.
type DeleteOptions struct {
	Version  *int32
	Callback VoidCallback
	Context  any
}

// ChildrenOptions configures Children.
type ChildrenOptions struct {
	Watch    bool
	Callback ChildrenCallback
	Context  any
}

// GetACLOptions configures GetACL.
type GetACLOptions struct {
	Callback ACLCallback
	Context  any
}

// SetACLOptions configures SetACL. ACL is required.
type SetACLOptions struct {
	ACL      []ACL
	Version  *int32
	Callback StatCallback
	Context  any
}

// AddAuthOptions configures AddAuth.
type AddAuthOptions struct {
	// Scheme defaults to DefaultAuthScheme.
	Scheme string
}

// request is the fully resolved form of a single call.
type request struct {
	op      Op
	path    string
	data    []byte
	version int32
	acl     []ACL
	watch   bool
	mode    CreateMode
	scheme  string
	async   bool
	context any
	site    string
}

func newRequest(op Op, path string, site string) *request {
	return &request{
		op:      op,
		path:    path,
		version: AnyVersion,
		site:    site,
	}
}

// setHandler records whether the call is asynchronous.
// A context is echoed back to the handler, so it is rejected without one.
func (r *request) setHandler(hasCallback bool, context any) error {
	if !hasCallback && context != nil {
		return invalidArgument(r.op, r.path, "context is given without a callback")
	}
	r.async = hasCallback
	r.context = context
	return nil
}

func (c *Conn) normalizeCreate(path string, data []byte, opts *CreateOptions, site string) (*request, error) {
	req := newRequest(OpCreate, path, site)
	req.data = encodeData(data)
	req.acl = c.defaultACL
	req.mode = Ephemeral

	if opts == nil {
		return req, nil
	}

	if opts.ACL != nil {
		if len(opts.ACL) == 0 {
			return nil, invalidArgument(req.op, path, "ACL list is empty")
		}
		req.acl = opts.ACL
	}

	legacy := opts.Ephemeral || opts.Sequential
	switch {
	case opts.Mode != 0 && legacy:
		return nil, invalidArgument(req.op, path, "mode %s is given together with the ephemeral/sequential flags", opts.Mode)
	case opts.Mode != 0:
		if !opts.Mode.valid() {
			return nil, invalidArgument(req.op, path, "unknown mode %s", opts.Mode)
		}
		req.mode = opts.Mode
	case legacy:
		req.mode = modeOf(opts.Ephemeral, opts.Sequential)
	}

	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeGet(path string, opts *GetOptions, site string) (*request, error) {
	req := newRequest(OpGet, path, site)
	if opts == nil {
		return req, nil
	}
	req.watch = opts.Watch
	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeExists(path string, opts *ExistsOptions, site string) (*request, error) {
	req := newRequest(OpExists, path, site)
	if opts == nil {
		return req, nil
	}
	req.watch = opts.Watch
	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeSet(path string, data []byte, opts *SetOptions, site string) (*request, error) {
	req := newRequest(OpSet, path, site)
	req.data = encodeData(data)
	if opts == nil {
		return req, nil
	}
	if opts.Version != nil {
		req.version = *opts.Version
	}
	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeDelete(path string, opts *DeleteOptions, site string) (*request, error) {
	req := newRequest(OpDelete, path, site)
	if opts == nil {
		return req, nil
	}
	if opts.Version != nil {
		req.version = *opts.Version
	}
	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeChildren(path string, opts *ChildrenOptions, site string) (*request, error) {
	req := newRequest(OpChildren, path, site)
	if opts == nil {
		return req, nil
	}
	req.watch = opts.Watch
	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeGetACL(path string, opts *GetACLOptions, site string) (*request, error) {
	req := newRequest(OpGetACL, path, site)
	if opts == nil {
		return req, nil
	}
	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeSetACL(path string, opts *SetACLOptions, site string) (*request, error) {
	req := newRequest(OpSetACL, path, site)
	if opts == nil || len(opts.ACL) == 0 {
		return nil, invalidArgument(req.op, path, "ACL list is required")
	}
	req.acl = opts.ACL
	if opts.Version != nil {
		req.version = *opts.Version
	}
	if err := req.setHandler(opts.Callback != nil, opts.Context); err != nil {
		return nil, err
	}
	return req, nil
}

func normalizeAddAuth(opts *AddAuthOptions, site string) (*request, error) {
	req := newRequest(OpAddAuth, "", site)
	req.scheme = DefaultAuthScheme
	if opts == nil {
		return req, nil
	}
	if opts.Scheme != "" {
		req.scheme = opts.Scheme
	}
	return req, nil
}
