package recipe

import (
	"slices"
	"strings"

	zk "github.com/QuangTung97/zkdual"
	"github.com/QuangTung97/zkdual/keeper"
)

// waitQueue is the ephemeral sequential node queue under parent shared by Lock and Election.
// Each participant owns the node "node:<nodeID>-<sequence>", the owner of the lowest
// sequence is at the head. Every other participant watches the node just before its own.
type waitQueue struct {
	parent string
	nodeID string
	acl    []keeper.ACL
	events *keeper.EventDispatcher

	onHead func(sess *Session)
	onFail func(err error)

	unsubscribe func()
}

type queueStatus int

const (
	queueStatusNeedCreate queueStatus = iota + 1
	queueStatusBlocked
	queueStatusHead
)

type nodeName struct {
	raw    string
	nodeID string
	seq    string
}

func parseNodeName(child string) (nodeName, bool) {
	idx := strings.LastIndex(child, "-")
	if idx < 0 {
		return nodeName{}, false
	}
	first, seq := child[:idx], child[idx+1:]

	id, ok := strings.CutPrefix(first, "node:")
	if !ok {
		return nodeName{}, false
	}
	return nodeName{raw: child, nodeID: id, seq: seq}, true
}

func (q *waitQueue) computeStatus(children []string) (queueStatus, string) {
	nodes := make([]nodeName, 0, len(children))
	for _, child := range children {
		n, ok := parseNodeName(child)
		if !ok {
			continue
		}
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b nodeName) int {
		return strings.Compare(a.seq, b.seq)
	})

	for i, n := range nodes {
		if n.nodeID != q.nodeID {
			continue
		}
		if i == 0 {
			return queueStatusHead, ""
		}
		return queueStatusBlocked, q.parent + "/" + nodes[i-1].raw
	}
	return queueStatusNeedCreate, ""
}

func (q *waitQueue) ownNodePrefix() string {
	return q.parent + "/node:" + q.nodeID + "-"
}

func (q *waitQueue) initFunc(sess *Session) {
	sess.Run(func(conn *keeper.Conn) {
		_, err := conn.Children(q.parent, &keeper.ChildrenOptions{
			Callback: keeper.ChildrenCallbackFunc(
				func(code keeper.Code, path string, ctx any, children []string) {
					if !sess.handleCode(code, q.initFunc, q.onFail) {
						return
					}

					status, prevNode := q.computeStatus(children)
					switch status {
					case queueStatusNeedCreate:
						q.createEphemeral(sess)
					case queueStatusBlocked:
						q.watchPreviousNode(sess, prevNode)
					default:
						q.onHead(sess)
					}
				},
			),
		})
		if err != nil {
			q.onFail(err)
		}
	})
}

func (q *waitQueue) createEphemeral(sess *Session) {
	sess.Run(func(conn *keeper.Conn) {
		_, err := conn.Create(q.ownNodePrefix(), nil, &keeper.CreateOptions{
			ACL:  q.acl,
			Mode: keeper.EphemeralSequential,
			Callback: keeper.StringCallbackFunc(
				func(code keeper.Code, path string, ctx any, name string) {
					// the node may have been created before the connection was lost,
					// listing again finds it
					if !sess.handleCode(code, q.initFunc, q.onFail) {
						return
					}
					q.initFunc(sess)
				},
			),
		})
		if err != nil {
			q.onFail(err)
		}
	})
}

func (q *waitQueue) stopWatching() {
	if q.unsubscribe != nil {
		q.unsubscribe()
		q.unsubscribe = nil
	}
}

func (q *waitQueue) watchPreviousNode(sess *Session, prevNode string) {
	q.stopWatching()
	q.unsubscribe = q.events.Subscribe(prevNode, func(ev zk.Event) {
		if ev.Type != zk.EventNodeDeleted {
			return
		}
		q.stopWatching()
		q.initFunc(sess)
	})

	sess.Run(func(conn *keeper.Conn) {
		_, err := conn.Exists(prevNode, &keeper.ExistsOptions{
			Watch: true,
			Callback: keeper.StatCallbackFunc(
				func(code keeper.Code, path string, ctx any, stat *keeper.Stat) {
					if code == zk.CodeNoNode {
						q.stopWatching()
						q.initFunc(sess)
						return
					}
					if !sess.handleCode(code, q.initFunc, q.onFail) {
						q.stopWatching()
					}
				},
			),
		})
		if err != nil {
			q.onFail(err)
		}
	})
}

// release deletes the own node of the participant, the next one becomes the head.
func (q *waitQueue) release(sess *Session, done func(err error)) {
	q.stopWatching()
	if sess.state.sess != sess {
		// the ephemeral node was removed with its session
		done(nil)
		return
	}
	sess.Run(func(conn *keeper.Conn) {
		_, err := conn.Children(q.parent, &keeper.ChildrenOptions{
			Callback: keeper.ChildrenCallbackFunc(
				func(code keeper.Code, path string, ctx any, children []string) {
					if code != keeper.OK {
						done(code)
						return
					}
					for _, child := range children {
						n, ok := parseNodeName(child)
						if !ok || n.nodeID != q.nodeID {
							continue
						}
						q.deleteNode(conn, q.parent+"/"+child, done)
						return
					}
					done(nil)
				},
			),
		})
		if err != nil {
			done(err)
		}
	})
}

func (q *waitQueue) deleteNode(conn *keeper.Conn, path string, done func(err error)) {
	err := conn.Delete(path, &keeper.DeleteOptions{
		Callback: keeper.VoidCallbackFunc(func(code keeper.Code, path string, ctx any) {
			if code == keeper.OK || code == zk.CodeNoNode {
				done(nil)
				return
			}
			done(code)
		}),
	})
	if err != nil {
		done(err)
	}
}
