package keeper

// Completion handlers of asynchronous calls. Each handler is called once with the outcome
// code of the call, the requested path and the context given in the options.
// Results are only meaningful when code is OK.
//
// A handler is either any value with a ProcessResult method or a plain function
// converted with the matching Func type.

// StringCallback receives the created path of Create.
type StringCallback interface {
	ProcessResult(code Code, path string, ctx any, name string)
}

// DataCallback receives the payload and Stat of Get.
type DataCallback interface {
	ProcessResult(code Code, path string, ctx any, data []byte, stat *Stat)
}

// StatCallback receives the Stat of Exists, Set and SetACL.
type StatCallback interface {
	ProcessResult(code Code, path string, ctx any, stat *Stat)
}

// VoidCallback receives the outcome of Delete.
type VoidCallback interface {
	ProcessResult(code Code, path string, ctx any)
}

// ChildrenCallback receives the child names of Children.
type ChildrenCallback interface {
	ProcessResult(code Code, path string, ctx any, children []string)
}

// ACLCallback receives the ACL list and Stat of GetACL.
type ACLCallback interface {
	ProcessResult(code Code, path string, ctx any, acl []ACL, stat *Stat)
}

type StringCallbackFunc func(code Code, path string, ctx any, name string)

func (f StringCallbackFunc) ProcessResult(code Code, path string, ctx any, name string) {
	f(code, path, ctx, name)
}

type DataCallbackFunc func(code Code, path string, ctx any, data []byte, stat *Stat)

func (f DataCallbackFunc) ProcessResult(code Code, path string, ctx any, data []byte, stat *Stat) {
	f(code, path, ctx, data, stat)
}

type StatCallbackFunc func(code Code, path string, ctx any, stat *Stat)

func (f StatCallbackFunc) ProcessResult(code Code, path string, ctx any, stat *Stat) {
	f(code, path, ctx, stat)
}

type VoidCallbackFunc func(code Code, path string, ctx any)

func (f VoidCallbackFunc) ProcessResult(code Code, path string, ctx any) {
	f(code, path, ctx)
}

type ChildrenCallbackFunc func(code Code, path string, ctx any, children []string)

func (f ChildrenCallbackFunc) ProcessResult(code Code, path string, ctx any, children []string) {
	f(code, path, ctx, children)
}

type ACLCallbackFunc func(code Code, path string, ctx any, acl []ACL, stat *Stat)

func (f ACLCallbackFunc) ProcessResult(code Code, path string, ctx any, acl []ACL, stat *Stat) {
	f(code, path, ctx, acl, stat)
}
