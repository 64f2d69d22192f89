package keeper

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"

	zk "github.com/QuangTung97/zkdual"
)

// Code is the outcome code of a call, delivered to completion handlers.
type Code = zk.ErrCode

// OK is the outcome code of a successful call.
const OK = zk.CodeOK

var (
	ErrNoNode                  = errors.New("keeper: node does not exist")
	ErrNodeExists              = errors.New("keeper: node already exists")
	ErrNoChildrenForEphemerals = errors.New("keeper: ephemeral nodes may not have children")
	ErrBadVersion              = errors.New("keeper: version conflict")
	ErrNotEmpty                = errors.New("keeper: node has children")
	ErrInvalidACL              = errors.New("keeper: invalid ACL")
	ErrAuthFailed              = errors.New("keeper: authentication failed")
	ErrNoAuth                  = errors.New("keeper: not authenticated")
	ErrSessionExpired          = errors.New("keeper: session expired")
	ErrConnectionLoss          = errors.New("keeper: connection loss")

	// ErrInvalidArgument is returned before any call is made when options conflict or are malformed.
	ErrInvalidArgument = errors.New("keeper: invalid argument")
)

var errorTaxonomy = map[Code]error{
	zk.CodeNoNode:                  ErrNoNode,
	zk.CodeNodeExists:              ErrNodeExists,
	zk.CodeNoChildrenForEphemerals: ErrNoChildrenForEphemerals,
	zk.CodeBadVersion:              ErrBadVersion,
	zk.CodeNotEmpty:                ErrNotEmpty,
	zk.CodeInvalidACL:              ErrInvalidACL,
	zk.CodeAuthFailed:              ErrAuthFailed,
	zk.CodeNoAuth:                  ErrNoAuth,
	zk.CodeSessionExpired:          ErrSessionExpired,
	zk.CodeConnectionLoss:          ErrConnectionLoss,
}

// Error is a failure reported by the store, attributed to the call that caused it.
// It matches its taxonomy sentinel and its Code with errors.Is.
type Error struct {
	Code Code
	Op   Op
	Path string
	Site string // file:line of the application call
	Err  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v: %s %s", e.Err, e.Op, e.Path)
	if e.Site != "" {
		msg += " (called at " + e.Site + ")"
	}
	return msg
}

func (e *Error) Unwrap() []error {
	return []error{e.Err, e.Code}
}

// translate maps a failure carrying a known outcome code into the taxonomy.
// Any other failure is returned unchanged.
func translate(err error, req *request) error {
	if err == nil {
		return nil
	}

	var code Code
	if !errors.As(err, &code) {
		return err
	}

	sentinel, ok := errorTaxonomy[code]
	if !ok {
		return err
	}

	return &Error{
		Code: code,
		Op:   req.op,
		Path: req.path,
		Site: req.site,
		Err:  sentinel,
	}
}

// codeOf returns the outcome code of err, CodeSystemError when err carries none.
func codeOf(err error) Code {
	if err == nil {
		return OK
	}
	var code Code
	if errors.As(err, &code) {
		return code
	}
	return zk.CodeSystemError
}

// callSite returns the position of the caller of the exported method that calls it.
func callSite() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return ""
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

func invalidArgument(op Op, path string, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s: %s", ErrInvalidArgument, op, path, fmt.Sprintf(format, args...))
}
