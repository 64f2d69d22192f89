package keeper

import (
	"fmt"

	zk "github.com/QuangTung97/zkdual"
)

// CreateMode is the lifetime and naming policy of a created node.
// The zero value means the mode is not set.
type CreateMode int

const (
	Persistent CreateMode = iota + 1
	Ephemeral
	PersistentSequential
	EphemeralSequential
)

func (m CreateMode) String() string {
	switch m {
	case Persistent:
		return "persistent"
	case Ephemeral:
		return "ephemeral"
	case PersistentSequential:
		return "persistent_sequential"
	case EphemeralSequential:
		return "ephemeral_sequential"
	default:
		return fmt.Sprintf("CreateMode(%d)", int(m))
	}
}

func (m CreateMode) valid() bool {
	return m >= Persistent && m <= EphemeralSequential
}

// IsEphemeral reports whether nodes of this mode are removed with their session.
func (m CreateMode) IsEphemeral() bool {
	return m == Ephemeral || m == EphemeralSequential
}

// IsSequential reports whether nodes of this mode get a numeric suffix.
func (m CreateMode) IsSequential() bool {
	return m == PersistentSequential || m == EphemeralSequential
}

// modeOf maps the two independent flags onto a mode.
func modeOf(ephemeral, sequential bool) CreateMode {
	switch {
	case ephemeral && sequential:
		return EphemeralSequential
	case ephemeral:
		return Ephemeral
	case sequential:
		return PersistentSequential
	default:
		return Persistent
	}
}

// flags returns the wire flags of the transport.
func (m CreateMode) flags() int32 {
	var f int32
	if m.IsEphemeral() {
		f |= zk.FlagEphemeral
	}
	if m.IsSequential() {
		f |= zk.FlagSequence
	}
	return f
}

// modeFromFlags panics on flags the transport never produces.
func modeFromFlags(f int32) CreateMode {
	if f&^(zk.FlagEphemeral|zk.FlagSequence) != 0 {
		panic(fmt.Sprintf("keeper: unknown create flags %d", f))
	}
	return modeOf(f&zk.FlagEphemeral != 0, f&zk.FlagSequence != 0)
}
