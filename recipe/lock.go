package recipe

import (
	"github.com/golang/glog"

	"github.com/QuangTung97/zkdual/keeper"
)

// Lock is a distributed lock among the participants under parent.
// A granted lock is held until Unlock or until the session ends.
type Lock struct {
	queue *waitQueue
	cur   *Curator

	onGranted func(sess *Session)
}

// NewLock creates a lock for nodeID, which must be unique among the participants.
// events must be the watcher of the Conn the lock runs on.
func NewLock(
	parent string, nodeID string,
	events *keeper.EventDispatcher,
	onGranted func(sess *Session),
) *Lock {
	l := &Lock{
		onGranted: onGranted,
	}
	l.queue = &waitQueue{
		parent: parent,
		nodeID: nodeID,
		events: events,
		onHead: l.granted,
		onFail: func(err error) {
			glog.Errorf("[LOCK] Lock on %q of %q failed: %v", parent, nodeID, err)
		},
	}
	l.cur = NewCurator(l.queue.initFunc)
	return l
}

// Curator returns the session runner to add to the Conn with keeper.WithSessionRunner.
func (l *Lock) Curator() *Curator {
	return l.cur
}

func (l *Lock) granted(sess *Session) {
	glog.Infof("[LOCK] %q granted the lock %q", l.queue.nodeID, l.queue.parent)
	l.onGranted(sess)
}

// Unlock releases the lock granted in sess, done is called once the lock node is deleted.
func (l *Lock) Unlock(sess *Session, done func(err error)) {
	l.queue.release(sess, done)
}
