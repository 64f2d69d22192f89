// Package zkfake is an in-memory ZooKeeper store with sessions implementing keeper.Transport.
//
// It keeps the store semantics the access layer depends on: versions, sequential suffixes,
// ephemeral nodes, ACL checks and one-shot watches. Callbacks and events of a session
// are delivered in order on a goroutine of that session, as the real client does.
package zkfake

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	zk "github.com/QuangTung97/zkdual"
)

type watchKind int

const (
	watchData watchKind = iota
	watchExist
	watchChild
)

func watchKindsOf(t zk.EventType) []watchKind {
	switch t {
	case zk.EventNodeCreated:
		return []watchKind{watchExist}
	case zk.EventNodeDataChanged:
		return []watchKind{watchExist, watchData}
	case zk.EventNodeChildrenChanged:
		return []watchKind{watchChild}
	case zk.EventNodeDeleted:
		return []watchKind{watchExist, watchData, watchChild}
	default:
		return nil
	}
}

type node struct {
	data     []byte
	acl      []zk.ACL
	stat     zk.Stat
	children map[string]struct{}
}

// Store is the shared tree that sessions operate on.
type Store struct {
	mut sync.Mutex

	now func() time.Time

	zxid          int64
	lastSessionID int64

	nodes   map[string]*node
	watches [3]map[string]map[*Session]struct{}
}

// StoreOption configures a Store.
type StoreOption func(s *Store)

// WithClock sets the clock used for Ctime and Mtime.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store containing only the root node.
func NewStore(options ...StoreOption) *Store {
	s := &Store{
		now:   time.Now,
		nodes: map[string]*node{},
	}
	for _, fn := range options {
		fn(s)
	}
	for i := range s.watches {
		s.watches[i] = map[string]map[*Session]struct{}{}
	}

	s.nodes["/"] = &node{
		acl:      zk.WorldACL(zk.PermAll),
		children: map[string]struct{}{},
	}
	return s
}

// Paths returns the paths of every node, sorted.
func (s *Store) Paths() []string {
	s.mut.Lock()
	defer s.mut.Unlock()

	paths := make([]string, 0, len(s.nodes))
	for p := range s.nodes {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// NodeData returns the payload of a node, and whether it exists.
func (s *Store) NodeData(path string) ([]byte, bool) {
	s.mut.Lock()
	defer s.mut.Unlock()

	n, ok := s.nodes[path]
	if !ok {
		return nil, false
	}
	return slices.Clone(n.data), true
}

func parentOf(path string) (string, string) {
	i := strings.LastIndex(path, "/")
	if i == 0 {
		return "/", path[1:]
	}
	return path[:i], path[i+1:]
}

func (s *Store) nowMillis() int64 {
	return s.now().UnixMilli()
}

func (s *Store) addWatch(kind watchKind, path string, sess *Session) {
	m, ok := s.watches[kind][path]
	if !ok {
		m = map[*Session]struct{}{}
		s.watches[kind][path] = m
	}
	m[sess] = struct{}{}
}

func (s *Store) removeWatchesOf(sess *Session) {
	for _, byPath := range s.watches {
		for path, m := range byPath {
			delete(m, sess)
			if len(m) == 0 {
				delete(byPath, path)
			}
		}
	}
}

// fire consumes the watches triggered by an event, a session gets at most one event.
func (s *Store) fire(path string, t zk.EventType) {
	targets := map[*Session]struct{}{}
	for _, kind := range watchKindsOf(t) {
		for sess := range s.watches[kind][path] {
			targets[sess] = struct{}{}
		}
		delete(s.watches[kind], path)
	}

	for sess := range targets {
		sess.emit(zk.Event{
			Type:  t,
			State: zk.StateSyncConnected,
			Path:  path,
		})
	}
}

func (s *Store) create(sess *Session, path string, data []byte, flags int32, acl []zk.ACL) (string, error) {
	parentPath, name := parentOf(path)

	parent, ok := s.nodes[parentPath]
	if !ok {
		return "", zk.CodeNoNode
	}
	if parent.stat.EphemeralOwner != 0 {
		return "", zk.CodeNoChildrenForEphemerals
	}
	if !sess.allowed(parent.acl, zk.PermCreate) {
		return "", zk.CodeNoAuth
	}

	acl, err := sess.fixupACL(acl)
	if err != nil {
		return "", err
	}

	if flags&zk.FlagSequence != 0 {
		suffix := fmt.Sprintf("%010d", parent.stat.Cversion)
		path += suffix
		name += suffix
	}

	if _, existed := s.nodes[path]; existed {
		return "", zk.CodeNodeExists
	}

	s.zxid++
	now := s.nowMillis()

	n := &node{
		data: slices.Clone(data),
		acl:  acl,
		stat: zk.Stat{
			Czxid:      s.zxid,
			Mzxid:      s.zxid,
			Ctime:      now,
			Mtime:      now,
			DataLength: int32(len(data)),
			Pzxid:      s.zxid,
		},
		children: map[string]struct{}{},
	}
	if flags&zk.FlagEphemeral != 0 {
		n.stat.EphemeralOwner = sess.id
	}
	s.nodes[path] = n

	parent.children[name] = struct{}{}
	parent.stat.Cversion++
	parent.stat.NumChildren++
	parent.stat.Pzxid = s.zxid

	s.fire(path, zk.EventNodeCreated)
	s.fire(parentPath, zk.EventNodeChildrenChanged)

	return path, nil
}

func (s *Store) remove(path string) {
	parentPath, name := parentOf(path)

	s.zxid++
	delete(s.nodes, path)

	if parent, ok := s.nodes[parentPath]; ok {
		delete(parent.children, name)
		parent.stat.Cversion++
		parent.stat.NumChildren--
		parent.stat.Pzxid = s.zxid
	}

	s.fire(path, zk.EventNodeDeleted)
	s.fire(parentPath, zk.EventNodeChildrenChanged)
}

func (s *Store) removeEphemerals(sess *Session) {
	var paths []string
	for p, n := range s.nodes {
		if n.stat.EphemeralOwner == sess.id {
			paths = append(paths, p)
		}
	}
	slices.Sort(paths)
	for _, p := range paths {
		s.remove(p)
	}
}

func checkVersion(expected int32, actual int32) error {
	if expected != -1 && expected != actual {
		return zk.CodeBadVersion
	}
	return nil
}

func (s *Store) delete(sess *Session, path string, version int32) error {
	if path == "/" {
		return zk.CodeBadArguments
	}

	n, ok := s.nodes[path]
	if !ok {
		return zk.CodeNoNode
	}

	parentPath, _ := parentOf(path)
	if !sess.allowed(s.nodes[parentPath].acl, zk.PermDelete) {
		return zk.CodeNoAuth
	}
	if err := checkVersion(version, n.stat.Version); err != nil {
		return err
	}
	if len(n.children) > 0 {
		return zk.CodeNotEmpty
	}

	s.remove(path)
	return nil
}

func (s *Store) exists(sess *Session, path string, watch bool) (zk.Stat, error) {
	n, ok := s.nodes[path]
	if !ok {
		if watch {
			s.addWatch(watchExist, path, sess)
		}
		return zk.Stat{}, zk.CodeNoNode
	}
	if watch {
		s.addWatch(watchData, path, sess)
	}
	return n.stat, nil
}

func (s *Store) get(sess *Session, path string, watch bool) ([]byte, zk.Stat, error) {
	n, ok := s.nodes[path]
	if !ok {
		return nil, zk.Stat{}, zk.CodeNoNode
	}
	if !sess.allowed(n.acl, zk.PermRead) {
		return nil, zk.Stat{}, zk.CodeNoAuth
	}
	if watch {
		s.addWatch(watchData, path, sess)
	}
	return slices.Clone(n.data), n.stat, nil
}

func (s *Store) set(sess *Session, path string, data []byte, version int32) (zk.Stat, error) {
	n, ok := s.nodes[path]
	if !ok {
		return zk.Stat{}, zk.CodeNoNode
	}
	if !sess.allowed(n.acl, zk.PermWrite) {
		return zk.Stat{}, zk.CodeNoAuth
	}
	if err := checkVersion(version, n.stat.Version); err != nil {
		return zk.Stat{}, err
	}

	s.zxid++
	n.data = slices.Clone(data)
	n.stat.Version++
	n.stat.Mzxid = s.zxid
	n.stat.Mtime = s.nowMillis()
	n.stat.DataLength = int32(len(data))

	s.fire(path, zk.EventNodeDataChanged)
	return n.stat, nil
}

func (s *Store) children(sess *Session, path string, watch bool) ([]string, zk.Stat, error) {
	n, ok := s.nodes[path]
	if !ok {
		return nil, zk.Stat{}, zk.CodeNoNode
	}
	if !sess.allowed(n.acl, zk.PermRead) {
		return nil, zk.Stat{}, zk.CodeNoAuth
	}
	if watch {
		s.addWatch(watchChild, path, sess)
	}

	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, n.stat, nil
}

func (s *Store) getACL(path string) ([]zk.ACL, zk.Stat, error) {
	n, ok := s.nodes[path]
	if !ok {
		return nil, zk.Stat{}, zk.CodeNoNode
	}
	return slices.Clone(n.acl), n.stat, nil
}

func (s *Store) setACL(sess *Session, path string, acl []zk.ACL, version int32) (zk.Stat, error) {
	n, ok := s.nodes[path]
	if !ok {
		return zk.Stat{}, zk.CodeNoNode
	}
	if !sess.allowed(n.acl, zk.PermAdmin) {
		return zk.Stat{}, zk.CodeNoAuth
	}

	acl, err := sess.fixupACL(acl)
	if err != nil {
		return zk.Stat{}, err
	}
	if err := checkVersion(version, n.stat.Aversion); err != nil {
		return zk.Stat{}, err
	}

	s.zxid++
	n.acl = acl
	n.stat.Aversion++
	return n.stat, nil
}
