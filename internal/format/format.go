package format

import (
	"fmt"
	"time"

	"github.com/meshcap/meshcap/internal/mesh"
)

// LabelMode controls how node identities are rendered.
type LabelMode string

const (
	LabelNamedWithHex LabelMode = "named-with-hex"
	LabelNamedOnly    LabelMode = "named-only"
	LabelHexOnly      LabelMode = "hex-only"
)

// ParseLabelMode validates a label mode name. "auto" aliases the
// default named-with-hex mode.
func ParseLabelMode(name string) (LabelMode, error) {
	switch LabelMode(name) {
	case "auto", "":
		return LabelNamedWithHex, nil
	case LabelNamedWithHex, LabelNamedOnly, LabelHexOnly:
		return LabelMode(name), nil
	}
	return "", fmt.Errorf("unknown label mode %q", name)
}

// Formatter renders packet records as display lines.
type Formatter struct {
	Book      *mesh.NodeBook
	Mode      LabelMode
	NoResolve bool
	Verbose   bool
}

// Line formats one packet:
//
//	[<utc time>] Ch:<n> <rssi>dBm/<snr>dB Hops:<used>/<start> from:<label> to:<label> <payload>
//
// Hop display falls back to Hop:<limit> when the hop start is unknown;
// an absent hop limit displays as 0.
func (f *Formatter) Line(p *mesh.Packet) string {
	ts := time.Unix(p.RxTime, 0).UTC().Format("2006-01-02 15:04:05")
	signal := fmt.Sprintf("%ddBm/%gdB", p.RxRssi, p.RxSnr)

	hops := fmt.Sprintf("Hop:%d", p.GetHopLimit())
	if p.HopStart != nil {
		used := *p.HopStart - p.GetHopLimit()
		if used < 0 {
			used = 0
		}
		hops = fmt.Sprintf("Hops:%d/%d", used, *p.HopStart)
	}

	line := fmt.Sprintf("[%s] Ch:%d %s %s from:%s to:%s",
		ts, p.Channel, signal, hops, f.NodeLabel(p.From), f.NodeLabel(p.To))
	if payload := f.Payload(p); payload != "" {
		line += " " + payload
	}
	return line
}

// NodeLabel renders a node identifier per the label mode. Identifiers
// that do not canonicalize (display names from foreign producers) pass
// through unchanged; absent identifiers render as "unknown".
func (f *Formatter) NodeLabel(id string) string {
	if id == "" {
		return "unknown"
	}
	num, ok := mesh.ToNodeNum(id)
	if !ok {
		return id
	}
	userID := mesh.UserID(num)
	if f.NoResolve || f.Mode == LabelHexOnly || f.Book == nil {
		return userID
	}

	best := f.Book.GetNum(num).Best()
	if best == userID {
		return userID
	}
	if f.Mode == LabelNamedOnly {
		return best
	}
	return fmt.Sprintf("%s (%s)", best, userID)
}
