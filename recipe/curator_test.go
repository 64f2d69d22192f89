package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	zk "github.com/QuangTung97/zkdual"
	"github.com/QuangTung97/zkdual/keeper"
)

func TestCurator(t *testing.T) {
	t.Run("begin retry end", func(t *testing.T) {
		var steps []string
		var current *Session

		c := NewCurator(func(sess *Session) {
			current = sess
			steps = append(steps, "init")
			sess.AddRetry(func(sess *Session) {
				steps = append(steps, "retry")
			})
		})

		c.Retry()
		assert.Equal(t, 0, len(steps))

		c.Begin(nil)
		assert.Equal(t, []string{"init"}, steps)

		c.Retry()
		c.Retry()
		assert.Equal(t, []string{"init", "retry"}, steps)

		ran := 0
		current.Run(func(conn *keeper.Conn) { ran++ })
		assert.Equal(t, 1, ran)

		c.End()
		current.Run(func(conn *keeper.Conn) { ran++ })
		assert.Equal(t, 1, ran)
	})

	t.Run("old session is invalid after new begin", func(t *testing.T) {
		var sessions []*Session
		c := NewCurator(func(sess *Session) {
			sessions = append(sessions, sess)
		})

		c.Begin(nil)
		c.End()
		c.Begin(nil)

		ran := 0
		sessions[0].Run(func(conn *keeper.Conn) { ran++ })
		sessions[1].Run(func(conn *keeper.Conn) { ran++ })
		assert.Equal(t, 1, ran)
	})
}

func TestNewChain(t *testing.T) {
	var steps []string
	var resume func(sess *Session)

	c := NewChain(
		func(sess *Session, next func(sess *Session)) {
			steps = append(steps, "first")
			resume = next
		},
		func(sess *Session, next func(sess *Session)) {
			steps = append(steps, "second")
			next(sess)
		},
		func(sess *Session, next func(sess *Session)) {
			steps = append(steps, "third")
			next(sess)
		},
	)

	c.Begin(nil)
	assert.Equal(t, []string{"first"}, steps)

	resume(c.sess)
	assert.Equal(t, []string{"first", "second", "third"}, steps)
}

func TestSession_HandleCode(t *testing.T) {
	c := NewCurator(func(sess *Session) {})
	c.Begin(nil)
	sess := c.sess

	var failures []error
	fail := func(err error) {
		failures = append(failures, err)
	}
	retries := 0
	retry := func(sess *Session) {
		retries++
	}

	assert.Equal(t, true, sess.handleCode(keeper.OK, retry, fail))

	assert.Equal(t, false, sess.handleCode(zk.CodeConnectionLoss, retry, fail))
	assert.Equal(t, 0, retries)
	c.Retry()
	assert.Equal(t, 1, retries)

	assert.Equal(t, false, sess.handleCode(zk.CodeNoAuth, retry, fail))
	assert.Equal(t, []error{zk.CodeNoAuth}, failures)
}

func TestParseNodeName(t *testing.T) {
	n, ok := parseNodeName("node:worker-01-0000000012")
	assert.Equal(t, true, ok)
	assert.Equal(t, nodeName{
		raw:    "node:worker-01-0000000012",
		nodeID: "worker-01",
		seq:    "0000000012",
	}, n)

	_, ok = parseNodeName("other-0000000001")
	assert.Equal(t, false, ok)

	_, ok = parseNodeName("node:abc")
	assert.Equal(t, false, ok)
}

func TestWaitQueue_ComputeStatus(t *testing.T) {
	q := &waitQueue{parent: "/locks", nodeID: "b"}

	status, prev := q.computeStatus([]string{"node:a-0000000001"})
	assert.Equal(t, queueStatusNeedCreate, status)
	assert.Equal(t, "", prev)

	status, prev = q.computeStatus([]string{
		"node:c-0000000003",
		"node:b-0000000002",
		"garbage",
		"node:a-0000000001",
	})
	assert.Equal(t, queueStatusBlocked, status)
	assert.Equal(t, "/locks/node:a-0000000001", prev)

	status, _ = q.computeStatus([]string{
		"node:c-0000000003",
		"node:b-0000000002",
	})
	assert.Equal(t, queueStatusHead, status)
}
