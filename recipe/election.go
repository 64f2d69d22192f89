package recipe

import (
	"github.com/golang/glog"

	"github.com/QuangTung97/zkdual/keeper"
)

// Election elects one leader among the participants under parent.
// A participant that loses its session gives up leadership, and joins again with the next session.
type Election struct {
	queue *waitQueue
	cur   *Curator

	onLeader func(sess *LeaderSession)

	leader *LeaderSession
}

// ElectionOption configures an Election.
type ElectionOption func(e *Election)

// WithElectionACL sets the ACL of the participant nodes, the Conn default ACL when not set.
func WithElectionACL(acl []keeper.ACL) ElectionOption {
	return func(e *Election) {
		e.queue.acl = acl
	}
}

// WithElectionErrorHandler receives failures the election can not recover from.
func WithElectionErrorHandler(fn func(err error)) ElectionOption {
	return func(e *Election) {
		e.queue.onFail = fn
	}
}

// NewElection creates an election for nodeID, which must be unique among the participants.
// events must be the watcher of the Conn the election runs on.
func NewElection(
	parent string, nodeID string,
	events *keeper.EventDispatcher,
	onLeader func(sess *LeaderSession),
	options ...ElectionOption,
) *Election {
	e := &Election{
		onLeader: onLeader,
	}
	e.queue = &waitQueue{
		parent: parent,
		nodeID: nodeID,
		events: events,
		onHead: e.becomeLeader,
		onFail: func(err error) {
			glog.Errorf("[ELECTION] Election on %q of %q failed: %v", parent, nodeID, err)
		},
	}
	for _, fn := range options {
		fn(e)
	}
	e.cur = NewCurator(e.queue.initFunc)
	return e
}

// Curator returns the session runner to add to the Conn with keeper.WithSessionRunner.
func (e *Election) Curator() *Curator {
	return e.cur
}

func (e *Election) becomeLeader(sess *Session) {
	glog.Infof("[ELECTION] %q is the leader of %q", e.queue.nodeID, e.queue.parent)
	e.leader = &LeaderSession{
		election: e,
		sess:     sess,
	}
	e.onLeader(e.leader)
}

// LeaderSession is the leadership of a participant, valid until its session ends or it resigns.
type LeaderSession struct {
	election *Election
	sess     *Session
}

// Run calls fn only while the leadership is still held.
func (s *LeaderSession) Run(fn func(conn *keeper.Conn)) {
	if s.election.leader != s {
		return
	}
	s.sess.Run(fn)
}

// IsLeader reports whether the leadership is still held.
func (s *LeaderSession) IsLeader() bool {
	return s.election.leader == s && s.sess.state.sess == s.sess
}

// Resign gives up the leadership by deleting the participant node.
// The participant does not join again until the next session.
func (s *LeaderSession) Resign(done func(err error)) {
	if s.election.leader != s {
		done(nil)
		return
	}
	s.election.leader = nil
	s.election.queue.release(s.sess, done)
}
