package mesh

import "strings"

// Canonical Meshtastic application port names, as they appear in
// decoded packet records.
const (
	PortText      = "TEXT_MESSAGE_APP"
	PortPosition  = "POSITION_APP"
	PortNodeInfo  = "NODEINFO_APP"
	PortRouting   = "ROUTING_APP"
	PortAdmin     = "ADMIN_APP"
	PortTelemetry = "TELEMETRY_APP"
)

// portAliases maps the short names accepted in filter expressions to
// canonical port names.
var portAliases = map[string]string{
	"text":      PortText,
	"position":  PortPosition,
	"nodeinfo":  PortNodeInfo,
	"routing":   PortRouting,
	"admin":     PortAdmin,
	"telemetry": PortTelemetry,
}

// PortName canonicalizes a port name: known short aliases map to their
// canonical names (case-insensitively), anything else passes through
// unchanged. Unknown names are not an error; the port set grows with
// the device firmware, so an unrecognized name simply never matches.
func PortName(name string) string {
	if canonical, ok := portAliases[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}
