package zk

import (
	"math/rand"
	"sync"
)

// SelectNextOutput is the next server to dial.
// RetryStart is true once every server of the list has been tried without success,
// the client then sleeps before dialing again.
type SelectNextOutput struct {
	Server     string
	RetryStart bool
}

// ServerSelector chooses which server the client connects to next.
type ServerSelector interface {
	Init(servers []string)
	Next() SelectNextOutput
	NotifyConnected()
}

// ServerListSelector walks a shuffled server list round-robin and sticks to
// the last server that a connection was established with.
type ServerListSelector struct {
	mut  sync.Mutex
	rand *rand.Rand

	servers  []string
	current  int
	attempts int
	sticky   bool
}

// NewServerListSelector creates a selector whose shuffle is seeded with seed.
func NewServerListSelector(seed int64) ServerSelector {
	return &ServerListSelector{
		rand: rand.New(rand.NewSource(seed)),
	}
}

func (s *ServerListSelector) Init(servers []string) {
	s.mut.Lock()
	defer s.mut.Unlock()

	s.servers = FormatServers(servers)
	stringShuffleRand(s.servers, s.rand)
	s.current = -1
	s.attempts = 0
}

func (s *ServerListSelector) Next() SelectNextOutput {
	s.mut.Lock()
	defer s.mut.Unlock()

	s.sticky = false
	s.current = (s.current + 1) % len(s.servers)
	s.attempts++

	return SelectNextOutput{
		Server:     s.servers[s.current],
		RetryStart: s.attempts >= len(s.servers),
	}
}

// NotifyConnected makes the following Next return the same server again.
func (s *ServerListSelector) NotifyConnected() {
	s.mut.Lock()
	defer s.mut.Unlock()

	if s.sticky {
		return
	}
	s.sticky = true
	s.current--
	s.attempts = 0
}
