package keeper

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	zk "github.com/QuangTung97/zkdual"
	"github.com/QuangTung97/zkdual/keeper/mock_keeper"
)

type dispatcherTest struct {
	transport *mock_keeper.MockTransport
	conn      *Conn
}

func newDispatcherTest(t *testing.T) *dispatcherTest {
	ctrl := gomock.NewController(t)
	transport := mock_keeper.NewMockTransport(ctrl)

	conn, err := New(transport)
	require.Equal(t, nil, err)

	return &dispatcherTest{
		transport: transport,
		conn:      conn,
	}
}

type stringResult struct {
	code Code
	path string
	ctx  any
	name string
}

func TestDispatcher_Create(t *testing.T) {
	t.Run("blocking", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Create("/workers", []byte{}, zk.FlagEphemeral|zk.FlagSequence, zk.WorldACL(zk.PermAll), gomock.Any()).
			DoAndReturn(func(
				path string, data []byte, flags int32, acl []zk.ACL,
				callback func(resp zk.CreateResponse, err error),
			) error {
				callback(zk.CreateResponse{Zxid: 21, Path: "/workers0000000003"}, nil)
				return nil
			})

		name, err := d.conn.Create("/workers", nil, &CreateOptions{Mode: EphemeralSequential})
		assert.Equal(t, nil, err)
		assert.Equal(t, "/workers0000000003", name)
	})

	t.Run("blocking outcome failure", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Create("/workers", []byte("data"), int32(0), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				path string, data []byte, flags int32, acl []zk.ACL,
				callback func(resp zk.CreateResponse, err error),
			) error {
				callback(zk.CreateResponse{}, zk.CodeNodeExists)
				return nil
			})

		name, err := d.conn.Create("/workers", []byte("data"), &CreateOptions{Mode: Persistent})
		assert.True(t, errors.Is(err, ErrNodeExists))
		assert.True(t, errors.Is(err, zk.CodeNodeExists))
		assert.Equal(t, "", name)

		var kerr *Error
		require.True(t, errors.As(err, &kerr))
		assert.Equal(t, OpCreate, kerr.Op)
		assert.Equal(t, "/workers", kerr.Path)
		assert.True(t, strings.HasPrefix(kerr.Site, "dispatcher_test.go:"), kerr.Site)
	})

	t.Run("callback", func(t *testing.T) {
		d := newDispatcherTest(t)

		var transportCallback func(resp zk.CreateResponse, err error)
		d.transport.EXPECT().
			Create("/workers", []byte{}, zk.FlagEphemeral, gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				path string, data []byte, flags int32, acl []zk.ACL,
				callback func(resp zk.CreateResponse, err error),
			) error {
				transportCallback = callback
				return nil
			})

		var results []stringResult
		name, err := d.conn.Create("/workers", nil, &CreateOptions{
			Callback: StringCallbackFunc(func(code Code, path string, ctx any, name string) {
				results = append(results, stringResult{code: code, path: path, ctx: ctx, name: name})
			}),
			Context: "ctx01",
		})
		assert.Equal(t, nil, err)
		assert.Equal(t, "", name)
		assert.Equal(t, 0, len(results))

		transportCallback(zk.CreateResponse{Path: "/workers"}, nil)
		assert.Equal(t, []stringResult{
			{code: OK, path: "/workers", ctx: "ctx01", name: "/workers"},
		}, results)
	})

	t.Run("callback receives failure code", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Create("/workers/a", gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				path string, data []byte, flags int32, acl []zk.ACL,
				callback func(resp zk.CreateResponse, err error),
			) error {
				callback(zk.CreateResponse{}, zk.CodeNoNode)
				return nil
			})

		var results []stringResult
		_, err := d.conn.Create("/workers/a", nil, &CreateOptions{
			Callback: StringCallbackFunc(func(code Code, path string, ctx any, name string) {
				results = append(results, stringResult{code: code, path: path, ctx: ctx, name: name})
			}),
		})
		assert.Equal(t, nil, err)
		assert.Equal(t, []stringResult{
			{code: zk.CodeNoNode, path: "/workers/a"},
		}, results)
	})

	t.Run("initiation failure is returned with callback", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(zk.CodeSessionExpired)

		_, err := d.conn.Create("/workers", nil, &CreateOptions{
			Callback: StringCallbackFunc(func(code Code, path string, ctx any, name string) {
				t.Fatal("must not be called")
			}),
		})
		assert.True(t, errors.Is(err, ErrSessionExpired))
	})

	t.Run("invalid argument is not issued", func(t *testing.T) {
		d := newDispatcherTest(t)

		_, err := d.conn.Create("/workers", nil, &CreateOptions{Mode: Persistent, Sequential: true})
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	})
}

func TestDispatcher_Get(t *testing.T) {
	t.Run("blocking with watch", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Get("/workers", true, gomock.Any()).
			DoAndReturn(func(path string, watch bool, callback func(resp zk.GetResponse, err error)) error {
				callback(zk.GetResponse{Data: nil, Stat: zk.Stat{Version: 4}}, nil)
				return nil
			})

		data, stat, err := d.conn.Get("/workers", &GetOptions{Watch: true})
		assert.Equal(t, nil, err)
		assert.Equal(t, []byte{}, data)
		assert.Equal(t, int32(4), stat.Version)
	})

	t.Run("unrecognized failure is returned unchanged", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Get("/workers", false, gomock.Any()).
			DoAndReturn(func(path string, watch bool, callback func(resp zk.GetResponse, err error)) error {
				callback(zk.GetResponse{}, zk.CodeMarshallingError)
				return nil
			})

		data, stat, err := d.conn.Get("/workers", nil)
		assert.Equal(t, zk.CodeMarshallingError, err)
		assert.Nil(t, data)
		assert.Nil(t, stat)
	})

	t.Run("invalid path is returned unchanged", func(t *testing.T) {
		d := newDispatcherTest(t)

		pathErr := zk.ValidatePath("workers", false)
		d.transport.EXPECT().Get("workers", false, gomock.Any()).Return(pathErr)

		_, _, err := d.conn.Get("workers", nil)
		assert.Equal(t, pathErr, err)
		assert.True(t, errors.Is(err, zk.ErrInvalidPath))
	})

	t.Run("callback", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Get("/workers", false, gomock.Any()).
			DoAndReturn(func(path string, watch bool, callback func(resp zk.GetResponse, err error)) error {
				callback(zk.GetResponse{Data: []byte("hello"), Stat: zk.Stat{Version: 1}}, nil)
				return nil
			})

		calls := 0
		_, _, err := d.conn.Get("/workers", &GetOptions{
			Callback: DataCallbackFunc(func(code Code, path string, ctx any, data []byte, stat *Stat) {
				calls++
				assert.Equal(t, OK, code)
				assert.Equal(t, []byte("hello"), data)
				assert.Equal(t, int32(1), stat.Version)
			}),
		})
		assert.Equal(t, nil, err)
		assert.Equal(t, 1, calls)
	})
}

func TestDispatcher_Exists(t *testing.T) {
	t.Run("blocking missing node", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Exists("/workers", true, gomock.Any()).
			DoAndReturn(func(path string, watch bool, callback func(resp zk.ExistsResponse, err error)) error {
				callback(zk.ExistsResponse{}, zk.CodeNoNode)
				return nil
			})

		stat, err := d.conn.Exists("/workers", &ExistsOptions{Watch: true})
		assert.Equal(t, nil, err)
		assert.Nil(t, stat)
	})

	t.Run("callback missing node", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Exists("/workers", false, gomock.Any()).
			DoAndReturn(func(path string, watch bool, callback func(resp zk.ExistsResponse, err error)) error {
				callback(zk.ExistsResponse{}, zk.CodeNoNode)
				return nil
			})

		var codes []Code
		var stats []*Stat
		_, err := d.conn.Exists("/workers", &ExistsOptions{
			Callback: StatCallbackFunc(func(code Code, path string, ctx any, stat *Stat) {
				codes = append(codes, code)
				stats = append(stats, stat)
			}),
		})
		assert.Equal(t, nil, err)
		assert.Equal(t, []Code{zk.CodeNoNode}, codes)
		assert.Equal(t, []*Stat{nil}, stats)
	})

	t.Run("blocking other failure", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Exists("/workers", false, gomock.Any()).
			DoAndReturn(func(path string, watch bool, callback func(resp zk.ExistsResponse, err error)) error {
				callback(zk.ExistsResponse{}, zk.CodeConnectionLoss)
				return nil
			})

		stat, err := d.conn.Exists("/workers", nil)
		assert.True(t, errors.Is(err, ErrConnectionLoss))
		assert.Nil(t, stat)
	})
}

func TestDispatcher_SetDelete(t *testing.T) {
	t.Run("set any version", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Set("/workers", []byte("v2"), AnyVersion, gomock.Any()).
			DoAndReturn(func(path string, data []byte, version int32, callback func(resp zk.SetResponse, err error)) error {
				callback(zk.SetResponse{Stat: zk.Stat{Version: 2}}, nil)
				return nil
			})

		stat, err := d.conn.Set("/workers", []byte("v2"), nil)
		assert.Equal(t, nil, err)
		assert.Equal(t, int32(2), stat.Version)
	})

	t.Run("set stale version", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Set("/workers", []byte{}, int32(0), gomock.Any()).
			DoAndReturn(func(path string, data []byte, version int32, callback func(resp zk.SetResponse, err error)) error {
				callback(zk.SetResponse{}, zk.CodeBadVersion)
				return nil
			})

		stat, err := d.conn.Set("/workers", nil, &SetOptions{Version: Version(0)})
		assert.True(t, errors.Is(err, ErrBadVersion))
		assert.Nil(t, stat)
	})

	t.Run("delete callback", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Delete("/workers", int32(5), gomock.Any()).
			DoAndReturn(func(path string, version int32, callback func(resp zk.DeleteResponse, err error)) error {
				callback(zk.DeleteResponse{}, zk.CodeNotEmpty)
				return nil
			})

		var codes []Code
		err := d.conn.Delete("/workers", &DeleteOptions{
			Version: Version(5),
			Callback: VoidCallbackFunc(func(code Code, path string, ctx any) {
				codes = append(codes, code)
			}),
		})
		assert.Equal(t, nil, err)
		assert.Equal(t, []Code{zk.CodeNotEmpty}, codes)
	})
}

func TestDispatcher_ChildrenACL(t *testing.T) {
	t.Run("children", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			Children("/workers", true, gomock.Any()).
			DoAndReturn(func(path string, watch bool, callback func(resp zk.ChildrenResponse, err error)) error {
				callback(zk.ChildrenResponse{Children: nil}, nil)
				return nil
			})

		children, err := d.conn.Children("/workers", &ChildrenOptions{Watch: true})
		assert.Equal(t, nil, err)
		assert.Equal(t, []string{}, children)
	})

	t.Run("get acl", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			GetACL("/workers", gomock.Any()).
			DoAndReturn(func(path string, callback func(resp zk.GetACLResponse, err error)) error {
				callback(zk.GetACLResponse{
					ACL:  zk.WorldACL(zk.PermRead),
					Stat: zk.Stat{Aversion: 3},
				}, nil)
				return nil
			})

		acl, stat, err := d.conn.GetACL("/workers", nil)
		assert.Equal(t, nil, err)
		assert.Equal(t, ReadACLUnsafe(), acl)
		assert.Equal(t, int32(3), stat.Aversion)
	})

	t.Run("set acl callback", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			SetACL("/workers", zk.AuthACL(zk.PermAll), int32(3), gomock.Any()).
			DoAndReturn(func(path string, acl []zk.ACL, version int32, callback func(resp zk.SetACLResponse, err error)) error {
				callback(zk.SetACLResponse{Stat: zk.Stat{Aversion: 4}}, nil)
				return nil
			})

		var stats []*Stat
		_, err := d.conn.SetACL("/workers", &SetACLOptions{
			ACL:     CreatorAllACL(),
			Version: Version(3),
			Callback: StatCallbackFunc(func(code Code, path string, ctx any, stat *Stat) {
				stats = append(stats, stat)
			}),
		})
		assert.Equal(t, nil, err)
		require.Equal(t, 1, len(stats))
		assert.Equal(t, int32(4), stats[0].Aversion)
	})

	t.Run("add auth", func(t *testing.T) {
		d := newDispatcherTest(t)

		d.transport.EXPECT().
			AddAuth("digest", []byte("user:pass"), gomock.Any()).
			DoAndReturn(func(scheme string, auth []byte, callback func(resp zk.AddAuthResponse, err error)) error {
				callback(zk.AddAuthResponse{}, zk.CodeAuthFailed)
				return nil
			})

		err := d.conn.AddAuth([]byte("user:pass"), nil)
		assert.True(t, errors.Is(err, ErrAuthFailed))
	})
}

func TestConn_Close(t *testing.T) {
	d := newDispatcherTest(t)

	d.transport.EXPECT().Close().Times(1)
	d.transport.EXPECT().State().Return(zk.StateClosed).Times(2)

	d.conn.Close()
	d.conn.Close()

	assert.Equal(t, true, d.conn.Closed())
	assert.Equal(t, false, d.conn.Connected())
}
