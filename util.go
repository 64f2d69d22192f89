package zk

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseServers splits a comma separated "host:port" list, as accepted by the Java client.
func ParseServers(hosts string) []string {
	var servers []string
	for _, s := range strings.Split(hosts, ",") {
		s = strings.TrimSpace(s)
		if len(s) == 0 {
			continue
		}
		servers = append(servers, s)
	}
	return servers
}

// FormatServers takes a slice of addresses, and makes sure they are in a format
// that resembles <addr>:<port>. If the server has no port provided, the
// DefaultPort constant is added to the end.
func FormatServers(servers []string) []string {
	srvs := make([]string, len(servers))
	for i, addr := range servers {
		if strings.Contains(addr, ":") {
			srvs[i] = addr
		} else {
			srvs[i] = addr + ":" + strconv.Itoa(DefaultPort)
		}
	}
	return srvs
}

// stringShuffleRand performs a Fisher-Yates shuffle on a slice of strings
func stringShuffleRand(s []string, r *rand.Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// ValidatePath will make sure a path is valid before sending the request
func ValidatePath(path string, isSequential bool) error {
	if err := validatePath(path, isSequential); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPath, err.Error())
	}
	return nil
}

func validatePath(path string, isSequential bool) error {
	if path == "" {
		return fmt.Errorf("path %q is empty", path)
	}

	if path[0] != '/' {
		return fmt.Errorf("path %q must start with a slash", path)
	}

	n := len(path)
	if n == 1 {
		// path is just the root
		return nil
	}

	if !isSequential && path[n-1] == '/' {
		return fmt.Errorf("path %q must not end with a slash", path)
	}

	// Start at rune 1 since we already know that the first character is
	// a '/'.
	for i, w := 1, 0; i < n; i += w {
		r, width := utf8.DecodeRuneInString(path[i:])
		switch {
		case r == '\u0000':
			return fmt.Errorf("path %q contains a null character", path)
		case r == '/':
			last, _ := utf8.DecodeLastRuneInString(path[:i])
			if last == '/' {
				return fmt.Errorf("path %q contains an empty node name", path)
			}
		case r == '.':
			last, lastWidth := utf8.DecodeLastRuneInString(path[:i])

			// Check for double dot
			if last == '.' {
				last, _ = utf8.DecodeLastRuneInString(path[:i-lastWidth])
			}

			if last == '/' {
				if i+1 == n {
					return fmt.Errorf("path %q ends with a relative name", path)
				}

				next, _ := utf8.DecodeRuneInString(path[i+width:])
				if next == '/' {
					return fmt.Errorf("path %q contains a relative name", path)
				}
			}
		case r >= '\u0000' && r <= '\u001f',
			r >= '\u007f' && r <= '\u009f',
			r >= '\uf000' && r <= '\uf8ff',
			r >= '\ufff0' && r <= '\uffff':
			return fmt.Errorf("path %q contains an invalid character", path)
		}
		w = width
	}
	return nil
}
