package zkfake_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	zk "github.com/QuangTung97/zkdual"
	"github.com/QuangTung97/zkdual/keeper"
	"github.com/QuangTung97/zkdual/zkfake"
)

var _ keeper.WatchingTransport = (*zkfake.Session)(nil)

type sessionTest struct {
	store  *zkfake.Store
	sess   *zkfake.Session
	events []zk.Event
	steps  []string
}

func newSessionTest(t *testing.T, options ...zkfake.StoreOption) *sessionTest {
	st := &sessionTest{
		store: zkfake.NewStore(options...),
	}
	st.sess = st.store.NewSession()
	st.sess.SetWatcher(func(ev zk.Event) {
		st.events = append(st.events, ev)
	})
	t.Cleanup(st.sess.Close)
	return st
}

func (st *sessionTest) addStep(step string) {
	st.steps = append(st.steps, step)
}

func errString(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}

func TestSession_Create(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	st := newSessionTest(t, zkfake.WithClock(func() time.Time { return now }))

	var created []zk.CreateResponse
	err := st.sess.Create("/app", []byte("data"), 0, zk.WorldACL(zk.PermAll),
		func(resp zk.CreateResponse, err error) {
			assert.Equal(t, nil, err)
			created = append(created, resp)
		},
	)
	assert.Equal(t, nil, err)

	var stats []zk.Stat
	err = st.sess.Get("/app", false, func(resp zk.GetResponse, err error) {
		assert.Equal(t, nil, err)
		assert.Equal(t, []byte("data"), resp.Data)
		stats = append(stats, resp.Stat)
	})
	assert.Equal(t, nil, err)

	st.sess.Sync()

	assert.Equal(t, []zk.CreateResponse{{Zxid: 1, Path: "/app"}}, created)
	assert.Equal(t, []zk.Stat{{
		Czxid:      1,
		Mzxid:      1,
		Ctime:      now.UnixMilli(),
		Mtime:      now.UnixMilli(),
		DataLength: 4,
		Pzxid:      1,
	}}, stats)
	assert.Equal(t, []string{"/", "/app"}, st.store.Paths())

	data, ok := st.store.NodeData("/app")
	assert.Equal(t, true, ok)
	assert.Equal(t, []byte("data"), data)

	_, ok = st.store.NodeData("/other")
	assert.Equal(t, false, ok)
}

func TestSession_CallbackOrder(t *testing.T) {
	st := newSessionTest(t)

	_ = st.sess.Create("/a", nil, 0, zk.WorldACL(zk.PermAll), func(resp zk.CreateResponse, err error) {
		st.addStep("create:" + errString(err))
	})
	_ = st.sess.Create("/a", nil, 0, zk.WorldACL(zk.PermAll), func(resp zk.CreateResponse, err error) {
		st.addStep("create-again:" + errString(err))
	})
	_ = st.sess.Set("/a", nil, 3, func(resp zk.SetResponse, err error) {
		st.addStep("set:" + errString(err))
	})
	_ = st.sess.Delete("/a", -1, func(resp zk.DeleteResponse, err error) {
		st.addStep("delete:" + errString(err))
	})
	st.sess.Sync()

	assert.Equal(t, []string{
		"create:ok",
		"create-again:" + zk.CodeNodeExists.Error(),
		"set:" + zk.CodeBadVersion.Error(),
		"delete:ok",
	}, st.steps)
}

func TestSession_Sequential(t *testing.T) {
	st := newSessionTest(t)

	var paths []string
	for i := 0; i < 3; i++ {
		_ = st.sess.Create("/lock-", nil, zk.FlagSequence|zk.FlagEphemeral, zk.WorldACL(zk.PermAll),
			func(resp zk.CreateResponse, err error) {
				assert.Equal(t, nil, err)
				paths = append(paths, resp.Path)
			},
		)
	}
	st.sess.Sync()

	assert.Equal(t, []string{
		"/lock-0000000000",
		"/lock-0000000001",
		"/lock-0000000002",
	}, paths)
}

func TestSession_WatchEvents(t *testing.T) {
	st := newSessionTest(t)
	other := st.store.NewSession()
	defer other.Close()

	_ = st.sess.Exists("/a", true, nil)
	_ = st.sess.Children("/", true, nil)
	st.sess.Sync()

	_ = other.Create("/a", nil, 0, zk.WorldACL(zk.PermAll), nil)
	other.Sync()
	st.sess.Sync()

	assert.Equal(t, []zk.Event{
		{Type: zk.EventSession, State: zk.StateHasSession, Server: "zkfake"},
		{Type: zk.EventNodeCreated, State: zk.StateSyncConnected, Path: "/a"},
		{Type: zk.EventNodeChildrenChanged, State: zk.StateSyncConnected, Path: "/"},
	}, st.events)

	t.Run("delete fires once per session", func(t *testing.T) {
		st.events = nil

		_ = st.sess.Get("/a", true, nil)
		_ = st.sess.Exists("/a", true, nil)
		st.sess.Sync()

		_ = other.Delete("/a", -1, nil)
		other.Sync()
		st.sess.Sync()

		assert.Equal(t, []zk.Event{
			{Type: zk.EventNodeDeleted, State: zk.StateSyncConnected, Path: "/a"},
		}, st.events)
	})
}

func TestSession_Lifecycle(t *testing.T) {
	st := newSessionTest(t)

	other := st.store.NewSession()
	defer other.Close()
	var otherEvents []zk.Event
	other.SetWatcher(func(ev zk.Event) {
		otherEvents = append(otherEvents, ev)
	})

	_ = st.sess.Create("/member", nil, zk.FlagEphemeral, zk.WorldACL(zk.PermAll), nil)
	st.sess.Sync()
	_ = other.Exists("/member", true, nil)
	other.Sync()

	st.sess.Disconnect()
	assert.Equal(t, zk.StateDisconnected, st.sess.State())

	_ = st.sess.Get("/member", false, func(resp zk.GetResponse, err error) {
		st.addStep("get:" + errString(err))
	})

	st.sess.Reconnect()
	assert.Equal(t, zk.StateHasSession, st.sess.State())

	st.sess.Expire()
	assert.Equal(t, zk.StateExpired, st.sess.State())
	assert.Equal(t, []string{"/"}, st.store.Paths())

	err := st.sess.Get("/", false, nil)
	assert.Equal(t, zk.CodeSessionExpired, err)

	st.sess.Sync()
	assert.Equal(t, []string{"get:" + zk.CodeConnectionLoss.Error()}, st.steps)

	assert.Equal(t, []zk.Event{
		{Type: zk.EventSession, State: zk.StateHasSession, Server: "zkfake"},
		{Type: zk.EventSession, State: zk.StateDisconnected, Server: "zkfake"},
		{Type: zk.EventSession, State: zk.StateHasSession, Server: "zkfake"},
		{Type: zk.EventSession, State: zk.StateExpired, Server: "zkfake"},
	}, st.events)

	other.Sync()
	assert.Equal(t, []zk.Event{
		{Type: zk.EventSession, State: zk.StateHasSession, Server: "zkfake"},
		{Type: zk.EventNodeDeleted, State: zk.StateSyncConnected, Path: "/member"},
	}, otherEvents)
}

func TestSession_FailAndReject(t *testing.T) {
	st := newSessionTest(t)

	st.sess.FailNext(zk.CodeOperationTimeout)
	_ = st.sess.Get("/", false, func(resp zk.GetResponse, err error) {
		st.addStep("get:" + errString(err))
	})
	_ = st.sess.Get("/", false, func(resp zk.GetResponse, err error) {
		st.addStep("get:" + errString(err))
	})

	st.sess.RejectNext(zk.CodeConnectionLoss)
	err := st.sess.Get("/", false, func(resp zk.GetResponse, err error) {
		st.addStep("rejected")
	})
	assert.Equal(t, zk.CodeConnectionLoss, err)

	st.sess.Sync()
	assert.Equal(t, []string{
		"get:" + zk.CodeOperationTimeout.Error(),
		"get:ok",
	}, st.steps)
}

func TestSession_ACL(t *testing.T) {
	st := newSessionTest(t)

	_ = st.sess.AddAuth("digest", []byte("user01:secret"), func(resp zk.AddAuthResponse, err error) {
		st.addStep("auth:" + errString(err))
	})
	_ = st.sess.AddAuth("digest", []byte("no-colon"), func(resp zk.AddAuthResponse, err error) {
		st.addStep("auth:" + errString(err))
	})
	_ = st.sess.Create("/p", nil, 0, zk.AuthACL(zk.PermRead|zk.PermAdmin), func(resp zk.CreateResponse, err error) {
		st.addStep("create:" + errString(err))
	})
	_ = st.sess.Set("/p", []byte("x"), -1, func(resp zk.SetResponse, err error) {
		st.addStep("set:" + errString(err))
	})
	_ = st.sess.Create("/q", nil, 0, []zk.ACL{{Perms: zk.PermAll, Scheme: "world", ID: "someone"}},
		func(resp zk.CreateResponse, err error) {
			st.addStep("create-invalid:" + errString(err))
		},
	)
	_ = st.sess.GetACL("/p", func(resp zk.GetACLResponse, err error) {
		assert.Equal(t, []zk.ACL{{
			Perms:  zk.PermRead | zk.PermAdmin,
			Scheme: "digest",
			ID:     zk.DigestACL(0, "user01", "secret")[0].ID,
		}}, resp.ACL)
		st.addStep("get-acl:" + errString(err))
	})
	st.sess.Sync()

	assert.Equal(t, []string{
		"auth:ok",
		"auth:" + zk.CodeAuthFailed.Error(),
		"create:ok",
		"set:" + zk.CodeNoAuth.Error(),
		"create-invalid:" + zk.CodeInvalidACL.Error(),
		"get-acl:ok",
	}, st.steps)
}

func TestSession_InvalidPath(t *testing.T) {
	st := newSessionTest(t)

	err := st.sess.Get("a", false, nil)
	assert.ErrorIs(t, err, zk.ErrInvalidPath)

	err = st.sess.Delete("/", -1, func(resp zk.DeleteResponse, err error) {
		st.addStep("delete:" + errString(err))
	})
	assert.Equal(t, nil, err)
	st.sess.Sync()
	assert.Equal(t, []string{"delete:" + zk.CodeBadArguments.Error()}, st.steps)
}

func TestSession_Close(t *testing.T) {
	t.Run("reports closed state", func(t *testing.T) {
		st := newSessionTest(t)

		st.sess.Close()
		assert.Equal(t, zk.StateClosed, st.sess.State())
		assert.Equal(t, []zk.Event{
			{Type: zk.EventSession, State: zk.StateHasSession, Server: "zkfake"},
			{Type: zk.EventSession, State: zk.StateClosed, Server: "zkfake"},
		}, st.events)

		st.sess.Close()
		assert.Equal(t, 2, len(st.events))
	})

	t.Run("expired session is not reported again", func(t *testing.T) {
		st := newSessionTest(t)

		st.sess.Expire()
		st.sess.Close()
		assert.Equal(t, []zk.Event{
			{Type: zk.EventSession, State: zk.StateHasSession, Server: "zkfake"},
			{Type: zk.EventSession, State: zk.StateExpired, Server: "zkfake"},
		}, st.events)
	})
}
