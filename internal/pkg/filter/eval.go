package filter

import (
	"strings"

	"github.com/meshcap/meshcap/internal/mesh"
)

// Record is the read-only view of a decoded packet that the evaluator
// matches against. Absent optional fields surface as zero values and
// follow the degrade-to-no-match rules documented on each predicate.
type Record interface {
	GetFrom() string     // raw source node identifier, "" when absent
	GetTo() string       // raw destination node identifier, "" when absent
	GetPortName() string // canonical port name, "" when nothing was decoded
	GetHopLimit() int    // 0 when absent
	GetPriority() string // "" when absent
	GetWantAck() bool    // false when absent
	IsEncrypted() bool   // true when the payload was not decoded
}

// Resolver maps raw node identifiers to canonical node numbers and user
// names. User predicates are the only ones that need name lookups;
// passing Unresolved keeps them evaluating to false without nil checks
// scattered through the evaluator.
type Resolver interface {
	ResolveNodeNum(id string) (uint32, bool)
	LookupUserNames(id string) (long, short string, ok bool)
}

// Unresolved is the Resolver used when name resolution is disabled. It
// still canonicalizes numeric identifiers but never knows any names.
type Unresolved struct{}

// ResolveNodeNum canonicalizes purely, without a node table.
func (Unresolved) ResolveNodeNum(id string) (uint32, bool) {
	return mesh.ToNodeNum(id)
}

// LookupUserNames always reports unresolved.
func (Unresolved) LookupUserNames(string) (string, string, bool) {
	return "", "", false
}

// Predicate reports whether one packet record matches a compiled filter
// expression.
type Predicate func(Record) bool

// Compile builds the per-packet predicate for a filter expression.
// Empty args compile to a predicate matching every record. The returned
// predicate is pure and safe for concurrent use.
func Compile(args []string, r Resolver) (Predicate, error) {
	root, err := Parse(args)
	if err != nil {
		return nil, err
	}
	return func(rec Record) bool {
		return Match(root, rec, r)
	}, nil
}

// Match evaluates an expression tree against one record. A nil tree
// matches everything. Matching never errors: inapplicable or absent
// record fields make leaf predicates evaluate to false.
func Match(e Expr, rec Record, r Resolver) bool {
	switch n := e.(type) {
	case nil:
		return true
	case AndExpr:
		return Match(n.L, rec, r) && Match(n.R, rec, r)
	case OrExpr:
		return Match(n.L, rec, r) || Match(n.R, rec, r)
	case NotExpr:
		return !Match(n.X, rec, r)
	case NodeExpr:
		return evalNode(n, rec, r)
	case UserExpr:
		return evalUser(n, rec, r)
	case PortExpr:
		port := rec.GetPortName()
		return port != "" && strings.EqualFold(mesh.PortName(n.Name), port)
	case HopLimitExpr:
		return evalHopLimit(n, rec.GetHopLimit())
	case PriorityExpr:
		pr := rec.GetPriority()
		return pr != "" && strings.EqualFold(pr, n.Level)
	case WantAckExpr:
		return rec.GetWantAck()
	case EncryptedExpr:
		return rec.IsEncrypted() == n.Encrypted
	default:
		return false
	}
}

func evalNode(n NodeExpr, rec Record, r Resolver) bool {
	switch n.Dir {
	case DirSrc:
		return nodeEquals(r, n.ID, rec.GetFrom())
	case DirDst:
		return nodeEquals(r, n.ID, rec.GetTo())
	default:
		return nodeEquals(r, n.ID, rec.GetFrom()) || nodeEquals(r, n.ID, rec.GetTo())
	}
}

// nodeEquals compares a filter identifier against a record field. Both
// sides canonicalize to node numbers when possible, so a decimal
// literal and a "!"-prefixed hex ID for the same node compare equal.
// Otherwise the comparison falls back to case-insensitive string
// equality.
func nodeEquals(r Resolver, want, field string) bool {
	if field == "" {
		return false
	}
	wantNum, wantOK := r.ResolveNodeNum(want)
	fieldNum, fieldOK := r.ResolveNodeNum(field)
	if wantOK && fieldOK {
		return wantNum == fieldNum
	}
	return strings.EqualFold(want, field)
}

func evalUser(n UserExpr, rec Record, r Resolver) bool {
	match := func(id string) bool {
		if id == "" {
			return false
		}
		long, short, ok := r.LookupUserNames(id)
		if !ok {
			return false
		}
		return strings.EqualFold(long, n.Name) || strings.EqualFold(short, n.Name)
	}
	switch n.Dir {
	case DirSrc:
		return match(rec.GetFrom())
	case DirDst:
		return match(rec.GetTo())
	default:
		return match(rec.GetFrom()) || match(rec.GetTo())
	}
}

func evalHopLimit(n HopLimitExpr, limit int) bool {
	switch n.Cmp {
	case CmpLess:
		return limit < n.Value
	case CmpGreater:
		return limit > n.Value
	default:
		return limit == n.Value
	}
}
