package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/term"

	zk "github.com/QuangTung97/zkdual"
	"github.com/QuangTung97/zkdual/keeper"
	"github.com/QuangTung97/zkdual/recipe"
)

const ZkCtlVersion = "0.1.0"

var Out *log.Logger
var Err *log.Logger

func init() {
	Out = log.New(os.Stdout, "", 0)
	Err = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lshortfile)
}

func main() {
	usage := `ZooKeeper control.

Usage:
    zkctl create [options] <path> [<data>]
        [--mode=<mode>] [--unique]
    zkctl get [options] <path> [--watch]
    zkctl stat [options] <path> [--watch]
    zkctl set [options] <path> <data> [--match_version=<version>]
    zkctl delete [options] <path> [--match_version=<version>]
    zkctl ls [options] <path> [--watch]
    zkctl getacl [options] <path>
    zkctl setacl [options] <path> <acl>... [--match_version=<version>]
    zkctl elect [options] <path> [--node_id=<node_id>]
    zkctl lock [options] <path> [--node_id=<node_id>]

Options:
    -h --help                   Show this screen.
    --version                   Show version.
    --hosts=<hosts>             Comma separated host:port list [default: localhost:2181].
    --timeout=<timeout>         Session timeout [default: 10s].
    --auth=<user:password>      Digest credentials added to the session,
                                the password is asked for when omitted.
    --mode=<mode>               persistent, ephemeral, persistent_sequential
                                or ephemeral_sequential [default: persistent].
    --unique                    Append a random uuid to the created path.
    --watch                     Wait for the next event of the node.
    --match_version=<version>   Only change the node at this version.
    --node_id=<node_id>         Participant id, a random uuid by default.

An <acl> is written scheme:expr=perms, with perms made of the letters rwcda,
e.g. world:anyone=r or digest:user:hash=rwcda.`

	opts, err := docopt.ParseArgs(usage, os.Args[1:], ZkCtlVersion)
	if err != nil {
		panic(err)
	}

	_ = flag.Set("logtostderr", "true")

	commands := []struct {
		name string
		run  func(conn *keeper.Conn, events *keeper.EventDispatcher, opts docopt.Opts) error
	}{
		{"create", create},
		{"get", get},
		{"stat", stat},
		{"set", set},
		{"delete", deleteNode},
		{"ls", list},
		{"getacl", getACL},
		{"setacl", setACL},
	}

	recipes := []struct {
		name string
		run  func(opts docopt.Opts) error
	}{
		{"elect", elect},
		{"lock", lock},
	}

	for _, r := range recipes {
		if selected, _ := opts.Bool(r.name); !selected {
			continue
		}
		if err := r.run(opts); err != nil {
			Err.Printf("%s: %v", r.name, err)
			os.Exit(1)
		}
		return
	}

	for _, cmd := range commands {
		if selected, _ := opts.Bool(cmd.name); !selected {
			continue
		}
		if err := run(opts, cmd.run); err != nil {
			Err.Printf("%s: %v", cmd.name, err)
			os.Exit(1)
		}
		return
	}
}

func sessionConfig(opts docopt.Opts) (string, time.Duration, error) {
	hosts, _ := opts.String("--hosts")
	timeoutStr, _ := opts.String("--timeout")
	timeout, err := time.ParseDuration(timeoutStr)
	return hosts, timeout, err
}

func run(
	opts docopt.Opts,
	fn func(conn *keeper.Conn, events *keeper.EventDispatcher, opts docopt.Opts) error,
) error {
	hosts, timeout, err := sessionConfig(opts)
	if err != nil {
		return err
	}

	events := keeper.NewEventDispatcher()
	established := make(chan struct{}, 1)
	events.SubscribeSession(func(ev zk.Event) {
		if ev.State == zk.StateHasSession {
			select {
			case established <- struct{}{}:
			default:
			}
		}
	})

	conn, err := keeper.Connect(hosts, timeout, keeper.WithWatcher(events))
	if err != nil {
		return err
	}
	defer conn.Close()

	select {
	case <-established:
	case <-time.After(timeout):
		return errors.New("session is not established in time")
	}

	auth, err := credentials(opts)
	if err != nil {
		return err
	}
	if auth != nil {
		if err := conn.AddAuth(auth, nil); err != nil {
			return err
		}
	}

	return fn(conn, events, opts)
}

// credentials returns the digest credentials of --auth, the password is read from the
// terminal when only a user is given.
func credentials(opts docopt.Opts) ([]byte, error) {
	auth, err := opts.String("--auth")
	if err != nil || auth == "" {
		return nil, nil
	}
	if strings.Contains(auth, ":") {
		return []byte(auth), nil
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", auth)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return []byte(auth + ":" + string(password)), nil
}

func matchVersion(opts docopt.Opts) (*int32, error) {
	if _, err := opts.String("--match_version"); err != nil {
		return nil, nil
	}
	v, err := opts.Int("--match_version")
	if err != nil {
		return nil, err
	}
	return keeper.Version(int32(v)), nil
}

func parseMode(s string) (keeper.CreateMode, error) {
	for _, m := range []keeper.CreateMode{
		keeper.Persistent, keeper.Ephemeral,
		keeper.PersistentSequential, keeper.EphemeralSequential,
	} {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func create(conn *keeper.Conn, _ *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	data, _ := opts.String("<data>")
	modeStr, _ := opts.String("--mode")

	mode, err := parseMode(modeStr)
	if err != nil {
		return err
	}
	if unique, _ := opts.Bool("--unique"); unique {
		path += "-" + uuid.NewString()
	}

	created, err := conn.Create(path, []byte(data), &keeper.CreateOptions{Mode: mode})
	if err != nil {
		return err
	}
	Out.Println(created)

	if mode.IsEphemeral() {
		waitForInterrupt()
	}
	return nil
}

// watchNode subscribes to the events of path, the returned function waits for the first one.
func watchNode(events *keeper.EventDispatcher, path string, opts docopt.Opts) (bool, func()) {
	watch, _ := opts.Bool("--watch")
	if !watch {
		return false, func() {}
	}

	ch := make(chan zk.Event, 1)
	events.Subscribe(path, func(ev zk.Event) {
		select {
		case ch <- ev:
		default:
		}
	})
	return true, func() {
		ev := <-ch
		Out.Printf("event %v on %s", ev.Type, ev.Path)
	}
}

func get(conn *keeper.Conn, events *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	watch, wait := watchNode(events, path, opts)

	data, st, err := conn.Get(path, &keeper.GetOptions{Watch: watch})
	if err != nil {
		return err
	}
	Out.Println(string(data))
	printStat(st)

	wait()
	return nil
}

func stat(conn *keeper.Conn, events *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	watch, wait := watchNode(events, path, opts)

	st, err := conn.Exists(path, &keeper.ExistsOptions{Watch: watch})
	if err != nil {
		return err
	}
	if st == nil {
		Out.Printf("%s does not exist", path)
	} else {
		printStat(st)
	}

	wait()
	return nil
}

func set(conn *keeper.Conn, _ *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	data, _ := opts.String("<data>")
	version, err := matchVersion(opts)
	if err != nil {
		return err
	}

	st, err := conn.Set(path, []byte(data), &keeper.SetOptions{Version: version})
	if err != nil {
		return err
	}
	printStat(st)
	return nil
}

func deleteNode(conn *keeper.Conn, _ *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	version, err := matchVersion(opts)
	if err != nil {
		return err
	}
	return conn.Delete(path, &keeper.DeleteOptions{Version: version})
}

func list(conn *keeper.Conn, events *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	watch, wait := watchNode(events, path, opts)

	children, err := conn.Children(path, &keeper.ChildrenOptions{Watch: watch})
	if err != nil {
		return err
	}
	for _, child := range children {
		Out.Println(child)
	}

	wait()
	return nil
}

func getACL(conn *keeper.Conn, _ *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")

	acl, st, err := conn.GetACL(path, nil)
	if err != nil {
		return err
	}
	for _, a := range acl {
		Out.Println(a)
	}
	Out.Printf("aversion = %d", st.Aversion)
	return nil
}

var permLetters = map[rune]keeper.Perm{
	'r': keeper.PermRead,
	'w': keeper.PermWrite,
	'c': keeper.PermCreate,
	'd': keeper.PermDelete,
	'a': keeper.PermAdmin,
}

func parseACL(s string) (keeper.ACL, error) {
	idx := strings.LastIndex(s, "=")
	if idx < 0 {
		return keeper.ACL{}, fmt.Errorf("acl %q has no permissions", s)
	}
	scheme, expr, ok := strings.Cut(s[:idx], ":")
	if !ok {
		return keeper.ACL{}, fmt.Errorf("acl %q has no scheme", s)
	}

	var perms keeper.Perm
	for _, r := range s[idx+1:] {
		p, ok := permLetters[r]
		if !ok {
			return keeper.ACL{}, fmt.Errorf("acl %q has unknown permission %q", s, r)
		}
		perms |= p
	}

	return keeper.ACL{
		Perms: perms,
		ID:    keeper.Identity{Scheme: scheme, Expr: expr},
	}, nil
}

func setACL(conn *keeper.Conn, _ *keeper.EventDispatcher, opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	version, err := matchVersion(opts)
	if err != nil {
		return err
	}

	var acl []keeper.ACL
	entries, _ := opts["<acl>"].([]string)
	for _, e := range entries {
		a, err := parseACL(e)
		if err != nil {
			return err
		}
		acl = append(acl, a)
	}

	st, err := conn.SetACL(path, &keeper.SetACLOptions{ACL: acl, Version: version})
	if err != nil {
		return err
	}
	printStat(st)
	return nil
}

func nodeID(opts docopt.Opts) string {
	if id, err := opts.String("--node_id"); err == nil && id != "" {
		return id
	}
	return uuid.NewString()
}

// runRecipe keeps a session with runner until interrupted.
func runRecipe(opts docopt.Opts, events *keeper.EventDispatcher, runner keeper.SessionRunner) error {
	hosts, timeout, err := sessionConfig(opts)
	if err != nil {
		return err
	}

	conn, err := keeper.Connect(hosts, timeout,
		keeper.WithWatcher(events),
		keeper.WithSessionRunner(runner),
	)
	if err != nil {
		return err
	}
	defer conn.Close()

	auth, err := credentials(opts)
	if err != nil {
		return err
	}
	if auth != nil {
		// credentials are kept and sent again on every reconnect
		if err := conn.AddAuth(auth, nil); err != nil && !errors.Is(err, keeper.ErrConnectionLoss) {
			return err
		}
	}

	waitForInterrupt()
	return nil
}

func elect(opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	id := nodeID(opts)

	events := keeper.NewEventDispatcher()
	e := recipe.NewElection(path, id, events, func(sess *recipe.LeaderSession) {
		Out.Printf("%s is the leader", id)
	})
	return runRecipe(opts, events, e.Curator())
}

func lock(opts docopt.Opts) error {
	path, _ := opts.String("<path>")
	id := nodeID(opts)

	events := keeper.NewEventDispatcher()
	l := recipe.NewLock(path, id, events, func(sess *recipe.Session) {
		Out.Printf("%s holds the lock", id)
	})
	return runRecipe(opts, events, l.Curator())
}

func printStat(st *keeper.Stat) {
	Out.Printf("czxid = %d", st.Czxid)
	Out.Printf("ctime = %s", st.Ctime.Format(time.RFC3339Nano))
	Out.Printf("mzxid = %d", st.Mzxid)
	Out.Printf("mtime = %s", st.Mtime.Format(time.RFC3339Nano))
	Out.Printf("pzxid = %d", st.Pzxid)
	Out.Printf("cversion = %d", st.Cversion)
	Out.Printf("dataVersion = %d", st.Version)
	Out.Printf("aclVersion = %d", st.Aversion)
	Out.Printf("ephemeralOwner = 0x%x", st.EphemeralOwner)
	Out.Printf("dataLength = %d", st.DataLength)
	Out.Printf("numChildren = %d", st.NumChildren)
}

func waitForInterrupt() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	<-ch
	glog.Flush()
}
