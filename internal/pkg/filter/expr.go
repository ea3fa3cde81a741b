package filter

// Direction selects which node/user fields of a record a predicate
// applies to.
type Direction int

const (
	DirAny Direction = iota
	DirSrc
	DirDst
)

// Comparator is the comparison kind of a hop_limit predicate.
type Comparator int

const (
	CmpLess Comparator = iota
	CmpGreater
	CmpEqual
)

// Expr is the interface implemented by all expression tree nodes.
// Trees are immutable after construction; each node owns its children
// exclusively.
type Expr interface {
	expr() // marker method
}

// AndExpr matches when both operands match. Evaluation short-circuits.
type AndExpr struct {
	L, R Expr
}

func (AndExpr) expr() {}

// OrExpr matches when either operand matches. Evaluation short-circuits.
type OrExpr struct {
	L, R Expr
}

func (OrExpr) expr() {}

// NotExpr negates its operand.
type NotExpr struct {
	X Expr
}

func (NotExpr) expr() {}

// NodeExpr matches records whose source and/or destination node is ID.
// ID is kept raw; canonicalization happens at evaluation time.
type NodeExpr struct {
	Dir Direction
	ID  string
}

func (NodeExpr) expr() {}

// UserExpr matches records whose source and/or destination node has the
// given long or short user name. Requires an identity resolver.
type UserExpr struct {
	Dir  Direction
	Name string
}

func (UserExpr) expr() {}

// PortExpr matches the record's application port. Unknown port names
// are legal and match nothing.
type PortExpr struct {
	Name string
}

func (PortExpr) expr() {}

// HopLimitExpr compares the record's hop limit against Value. Absent
// hop limits compare as 0.
type HopLimitExpr struct {
	Cmp   Comparator
	Value int
}

func (HopLimitExpr) expr() {}

// PriorityExpr matches the record's priority, case-insensitively.
type PriorityExpr struct {
	Level string
}

func (PriorityExpr) expr() {}

// WantAckExpr matches records that request a delivery acknowledgment.
type WantAckExpr struct{}

func (WantAckExpr) expr() {}

// EncryptedExpr matches on encryption status: Encrypted selects records
// whose payload was not decoded, plaintext selects the rest.
type EncryptedExpr struct {
	Encrypted bool
}

func (EncryptedExpr) expr() {}
