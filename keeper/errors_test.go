package keeper

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	zk "github.com/QuangTung97/zkdual"
)

func TestTranslate(t *testing.T) {
	req := &request{op: OpDelete, path: "/workers", site: "main.go:12"}

	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, nil, translate(nil, req))
	})

	t.Run("every known code", func(t *testing.T) {
		for code, sentinel := range errorTaxonomy {
			err := translate(code, req)

			assert.Equal(t, &Error{
				Code: code,
				Op:   OpDelete,
				Path: "/workers",
				Site: "main.go:12",
				Err:  sentinel,
			}, err)
			assert.True(t, errors.Is(err, sentinel), code.Error())
			assert.True(t, errors.Is(err, code), code.Error())
		}
	})

	t.Run("matches only its own sentinel", func(t *testing.T) {
		err := translate(zk.CodeBadVersion, req)
		assert.True(t, errors.Is(err, ErrBadVersion))
		assert.False(t, errors.Is(err, ErrNoNode))
		assert.False(t, errors.Is(err, zk.CodeNoNode))
	})

	t.Run("wrapped code", func(t *testing.T) {
		err := translate(fmt.Errorf("wrapped: %w", zk.CodeNodeExists), req)
		assert.True(t, errors.Is(err, ErrNodeExists))

		var kerr *Error
		assert.True(t, errors.As(err, &kerr))
		assert.Equal(t, zk.CodeNodeExists, kerr.Code)
	})

	t.Run("unknown code is returned unchanged", func(t *testing.T) {
		err := translate(zk.ErrCode(-999), req)
		assert.Equal(t, zk.ErrCode(-999), err)

		err = translate(zk.CodeOperationTimeout, req)
		assert.Equal(t, zk.CodeOperationTimeout, err)
	})

	t.Run("foreign error is returned unchanged", func(t *testing.T) {
		orig := errors.New("some error")
		assert.Same(t, orig, translate(orig, req))

		pathErr := fmt.Errorf("%w: bad", zk.ErrInvalidPath)
		assert.Equal(t, pathErr, translate(pathErr, req))
	})
}

func TestError_Message(t *testing.T) {
	err := &Error{
		Code: zk.CodeNoNode,
		Op:   OpGet,
		Path: "/workers",
		Site: "main.go:12",
		Err:  ErrNoNode,
	}
	assert.Equal(t, "keeper: node does not exist: get /workers (called at main.go:12)", err.Error())

	err.Site = ""
	assert.Equal(t, "keeper: node does not exist: get /workers", err.Error())
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, OK, codeOf(nil))
	assert.Equal(t, zk.CodeNoNode, codeOf(zk.CodeNoNode))
	assert.Equal(t, zk.ErrCode(-999), codeOf(zk.ErrCode(-999)))
	assert.Equal(t, zk.CodeBadVersion, codeOf(fmt.Errorf("wrapped: %w", zk.CodeBadVersion)))
	assert.Equal(t, zk.CodeSystemError, codeOf(errors.New("some error")))
}

func TestInvalidArgument(t *testing.T) {
	err := invalidArgument(OpCreate, "/workers", "unknown mode %s", CreateMode(7))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, "keeper: invalid argument: create /workers: unknown mode CreateMode(7)", err.Error())
}
