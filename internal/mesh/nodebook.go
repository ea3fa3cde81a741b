package mesh

import "sync"

// NodeInfo is the user information known for a node.
type NodeInfo struct {
	LongName  string
	ShortName string
}

// NodeLabel is the display identity of a node. Labels are cached and
// shared; treat them as read-only.
type NodeLabel struct {
	NodeNum   uint32
	UserID    string
	LongName  string
	ShortName string
}

// Best returns the preferred display name: long name, then short name,
// then the hex user ID.
func (l *NodeLabel) Best() string {
	if l.LongName != "" {
		return l.LongName
	}
	if l.ShortName != "" {
		return l.ShortName
	}
	return l.UserID
}

// NodeBook caches node labels keyed by canonical node number. It learns
// user names from a device node table or from NODEINFO packets observed
// during capture, and serves as the filter's identity resolver. Safe
// for concurrent use.
type NodeBook struct {
	mu     sync.Mutex
	infos  map[uint32]NodeInfo
	labels map[uint32]*NodeLabel
}

// NewNodeBook returns an empty node book.
func NewNodeBook() *NodeBook {
	return &NodeBook{
		infos:  make(map[uint32]NodeInfo),
		labels: make(map[uint32]*NodeLabel),
	}
}

// Learn records user names for a node. Empty names do not erase
// previously known ones.
func (b *NodeBook) Learn(num uint32, info NodeInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()

	known := b.infos[num]
	if info.LongName != "" {
		known.LongName = info.LongName
	}
	if info.ShortName != "" {
		known.ShortName = info.ShortName
	}
	b.infos[num] = known
	delete(b.labels, num) // re-resolve on next lookup
}

// LearnPacket learns names from a NODEINFO payload, if the packet
// carries one.
func (b *NodeBook) LearnPacket(p *Packet) {
	if p.Decoded == nil || p.Decoded.Portnum != PortNodeInfo || p.Decoded.User == nil {
		return
	}
	u := p.Decoded.User
	id := u.ID
	if id == "" {
		id = p.From
	}
	num, ok := ToNodeNum(id)
	if !ok {
		return
	}
	b.Learn(num, NodeInfo{LongName: u.LongName, ShortName: u.ShortName})
}

// Get returns the label for a raw node identifier, or false when the
// identifier does not canonicalize to a node number.
func (b *NodeBook) Get(id string) (*NodeLabel, bool) {
	num, ok := ToNodeNum(id)
	if !ok {
		return nil, false
	}
	return b.GetNum(num), true
}

// GetNum returns the label for a node number. Repeated lookups of the
// same node return the same label pointer, whatever spelling the
// identifier used.
func (b *NodeBook) GetNum(num uint32) *NodeLabel {
	b.mu.Lock()
	defer b.mu.Unlock()

	if l, ok := b.labels[num]; ok {
		return l
	}
	info := b.infos[num]
	l := &NodeLabel{
		NodeNum:   num,
		UserID:    UserID(num),
		LongName:  info.LongName,
		ShortName: info.ShortName,
	}
	b.labels[num] = l
	return l
}

// ResolveNodeNum implements the filter resolver surface.
func (b *NodeBook) ResolveNodeNum(id string) (uint32, bool) {
	return ToNodeNum(id)
}

// LookupUserNames reports the long and short user names known for a
// node identifier.
func (b *NodeBook) LookupUserNames(id string) (string, string, bool) {
	num, ok := ToNodeNum(id)
	if !ok {
		return "", "", false
	}
	b.mu.Lock()
	info, ok := b.infos[num]
	b.mu.Unlock()
	if !ok {
		return "", "", false
	}
	return info.LongName, info.ShortName, true
}
