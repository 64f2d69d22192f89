package keeper

import (
	"strings"

	zk "github.com/QuangTung97/zkdual"
)

// Perm is a permission bit-set of an ACL entry, combined with bitwise or.
type Perm int32

const (
	PermRead   = Perm(zk.PermRead)
	PermWrite  = Perm(zk.PermWrite)
	PermCreate = Perm(zk.PermCreate)
	PermDelete = Perm(zk.PermDelete)
	PermAdmin  = Perm(zk.PermAdmin)
	PermAll    = Perm(zk.PermAll)
)

var permNames = []struct {
	perm Perm
	name string
}{
	{PermRead, "READ"},
	{PermWrite, "WRITE"},
	{PermCreate, "CREATE"},
	{PermDelete, "DELETE"},
	{PermAdmin, "ADMIN"},
}

func (p Perm) String() string {
	if p == PermAll {
		return "ALL"
	}
	var names []string
	for _, e := range permNames {
		if p&e.perm != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// Identity is the (scheme, expression) pair an ACL entry grants permissions to.
// Known schemes are "world", "auth", "digest", "host" and "ip".
type Identity struct {
	Scheme string
	Expr   string
}

func (id Identity) String() string {
	return id.Scheme + ":" + id.Expr
}

var (
	// AnyoneIDUnsafe matches every client.
	AnyoneIDUnsafe = Identity{Scheme: "world", Expr: "anyone"}
	// AuthIDs is replaced by the server with the identities the session has authenticated as.
	AuthIDs = Identity{Scheme: "auth", Expr: ""}
)

// ACL is a single access control entry.
type ACL struct {
	Perms Perm
	ID    Identity
}

func (a ACL) String() string {
	return a.ID.String() + "=" + a.Perms.String()
}

// OpenACLUnsafe returns a completely open ACL list.
func OpenACLUnsafe() []ACL {
	return []ACL{{Perms: PermAll, ID: AnyoneIDUnsafe}}
}

// ReadACLUnsafe returns an ACL list giving everyone read access.
func ReadACLUnsafe() []ACL {
	return []ACL{{Perms: PermRead, ID: AnyoneIDUnsafe}}
}

// CreatorAllACL returns an ACL list giving the creator's authenticated identities all permissions.
func CreatorAllACL() []ACL {
	return []ACL{{Perms: PermAll, ID: AuthIDs}}
}

// DigestACL returns an ACL list for a "digest" user, password is given in plain text.
func DigestACL(perms Perm, user, password string) []ACL {
	return decodeACL(zk.DigestACL(int32(perms), user, password))
}
