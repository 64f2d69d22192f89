package recipe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/zkdual/keeper"
	"github.com/QuangTung97/zkdual/zkfake"
)

type participant struct {
	sess   *zkfake.Session
	conn   *keeper.Conn
	events *keeper.EventDispatcher
}

func newStoreWithParent(t *testing.T, parent string) *zkfake.Store {
	store := zkfake.NewStore()

	sess := store.NewSession()
	conn, err := keeper.New(sess)
	require.Equal(t, nil, err)
	defer conn.Close()

	_, err = conn.Create(parent, nil, &keeper.CreateOptions{Mode: keeper.Persistent})
	require.Equal(t, nil, err)

	return store
}

func newParticipant(
	t *testing.T, store *zkfake.Store,
	events *keeper.EventDispatcher, runner keeper.SessionRunner,
) *participant {
	p := &participant{
		sess:   store.NewSession(),
		events: events,
	}

	conn, err := keeper.New(p.sess,
		keeper.WithWatcher(events),
		keeper.WithSessionRunner(runner),
	)
	require.Equal(t, nil, err)
	p.conn = conn
	t.Cleanup(conn.Close)

	return p
}

// settle waits until the callbacks chained by the recipes are all called.
func settle(participants ...*participant) {
	for i := 0; i < 20; i++ {
		for _, p := range participants {
			p.sess.Sync()
		}
	}
}
