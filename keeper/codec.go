package keeper

import (
	"fmt"
	"time"

	zk "github.com/QuangTung97/zkdual"
)

// encodeData never returns nil, the store has no notion of an absent payload.
func encodeData(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}

func decodeData(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}

func encodeACL(acl []ACL) []zk.ACL {
	result := make([]zk.ACL, 0, len(acl))
	for _, a := range acl {
		result = append(result, zk.ACL{
			Perms:  int32(a.Perms),
			Scheme: a.ID.Scheme,
			ID:     a.ID.Expr,
		})
	}
	return result
}

// decodeACL panics on permission bits outside of PermAll, the store never sends them.
func decodeACL(acl []zk.ACL) []ACL {
	result := make([]ACL, 0, len(acl))
	for _, a := range acl {
		if a.Perms < 0 || Perm(a.Perms)&^PermAll != 0 {
			panic(fmt.Sprintf("keeper: malformed ACL permissions %d for %s:%s", a.Perms, a.Scheme, a.ID))
		}
		result = append(result, ACL{
			Perms: Perm(a.Perms),
			ID: Identity{
				Scheme: a.Scheme,
				Expr:   a.ID,
			},
		})
	}
	return result
}

func decodeStat(s zk.Stat) *Stat {
	return &Stat{
		Czxid:          s.Czxid,
		Mzxid:          s.Mzxid,
		Ctime:          time.UnixMilli(s.Ctime),
		Mtime:          time.UnixMilli(s.Mtime),
		Version:        s.Version,
		Cversion:       s.Cversion,
		Aversion:       s.Aversion,
		EphemeralOwner: s.EphemeralOwner,
		DataLength:     s.DataLength,
		NumChildren:    s.NumChildren,
		Pzxid:          s.Pzxid,
	}
}

func decodeChildren(children []string) []string {
	if children == nil {
		return []string{}
	}
	return children
}
