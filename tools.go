//go:build tools

package zk

import (
	_ "github.com/mgechev/revive"
	_ "go.uber.org/mock/mockgen"
)
