package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/zkdual/keeper"
	"github.com/QuangTung97/zkdual/zkfake"
)

type lockTest struct {
	lock    *Lock
	p       *participant
	granted []*Session
}

func newLockTest(t *testing.T, store *zkfake.Store, nodeID string) *lockTest {
	l := &lockTest{}
	events := keeper.NewEventDispatcher()
	l.lock = NewLock("/locks", nodeID, events, func(sess *Session) {
		l.granted = append(l.granted, sess)
	})
	l.p = newParticipant(t, store, events, l.lock.Curator())
	return l
}

func TestLock(t *testing.T) {
	t.Run("granted in order", func(t *testing.T) {
		store := newStoreWithParent(t, "/locks")

		a := newLockTest(t, store, "a")
		settle(a.p)
		b := newLockTest(t, store, "b")
		c := newLockTest(t, store, "c")
		settle(a.p, b.p, c.p)

		assert.Equal(t, 1, len(a.granted))
		assert.Equal(t, 0, len(b.granted))
		assert.Equal(t, 0, len(c.granted))

		var results []error
		a.lock.Unlock(a.granted[0], func(err error) {
			results = append(results, err)
		})
		settle(a.p, b.p, c.p)

		assert.Equal(t, []error{nil}, results)
		assert.Equal(t, 1, len(b.granted))
		assert.Equal(t, 0, len(c.granted))

		b.lock.Unlock(b.granted[0], func(err error) {
			results = append(results, err)
		})
		settle(a.p, b.p, c.p)

		assert.Equal(t, []error{nil, nil}, results)
		assert.Equal(t, 1, len(c.granted))
		assert.Equal(t, []string{"/", "/locks", "/locks/node:c-0000000002"}, store.Paths())
	})

	t.Run("waiter in the middle leaves", func(t *testing.T) {
		store := newStoreWithParent(t, "/locks")

		a := newLockTest(t, store, "a")
		settle(a.p)
		b := newLockTest(t, store, "b")
		settle(a.p, b.p)
		c := newLockTest(t, store, "c")
		settle(a.p, b.p, c.p)

		b.p.sess.Expire()
		settle(a.p, b.p, c.p)
		assert.Equal(t, 0, len(c.granted))

		a.lock.Unlock(a.granted[0], func(err error) {})
		settle(a.p, c.p)

		require.Equal(t, 1, len(c.granted))
	})

	t.Run("holder session expired", func(t *testing.T) {
		store := newStoreWithParent(t, "/locks")

		a := newLockTest(t, store, "a")
		settle(a.p)
		b := newLockTest(t, store, "b")
		settle(a.p, b.p)

		a.p.sess.Expire()
		settle(a.p, b.p)

		assert.Equal(t, 1, len(b.granted))

		// unlock of an ended session has nothing to delete
		var results []error
		a.lock.Unlock(a.granted[0], func(err error) {
			results = append(results, err)
		})
		assert.Equal(t, []error{nil}, results)
	})

	t.Run("retry after connection loss", func(t *testing.T) {
		store := newStoreWithParent(t, "/locks")

		a := newLockTest(t, store, "a")
		settle(a.p)
		b := newLockTest(t, store, "b")
		settle(a.p, b.p)

		b.p.sess.Disconnect()
		settle(b.p)

		a.lock.Unlock(a.granted[0], func(err error) {})
		settle(a.p, b.p)
		assert.Equal(t, 0, len(b.granted))

		b.p.sess.Reconnect()
		settle(a.p, b.p)
		assert.Equal(t, 1, len(b.granted))
	})
}
