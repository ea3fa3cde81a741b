package mesh

import (
	"fmt"
	"strconv"
	"strings"
)

// Broadcast is the node number of the mesh broadcast address.
const Broadcast uint32 = 0xffffffff

// ToNodeNum canonicalizes a raw node identifier to its node number.
// Accepted spellings: "!"-prefixed hex node IDs, bare hex, and bare
// decimal. Decimal wins when a string is valid in both bases. Anything
// else (display names, empty or blank strings) is unresolved.
func ToNodeNum(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.HasPrefix(s, "!") {
		return parseHex(s[1:])
	}
	if n, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(n), true
	}
	return parseHex(s)
}

func parseHex(s string) (uint32, bool) {
	if s == "" || len(s) > 8 {
		return 0, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// UserID renders a node number in the conventional "!"-prefixed
// zero-padded hex display form.
func UserID(num uint32) string {
	return fmt.Sprintf("!%08x", num)
}
