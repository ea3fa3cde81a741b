package mesh

// Packet is one decoded mesh packet record. Optional fields are
// pointers (or empty strings for identifiers); absence is distinct
// from any concrete value. Records are read-only once constructed.
type Packet struct {
	From      string   `json:"fromId,omitempty"`
	To        string   `json:"toId,omitempty"`
	Channel   int      `json:"channel,omitempty"`
	RxTime    int64    `json:"rxTime,omitempty"`
	RxRssi    int      `json:"rxRssi,omitempty"`
	RxSnr     float64  `json:"rxSnr,omitempty"`
	HopLimit  *int     `json:"hopLimit,omitempty"`
	HopStart  *int     `json:"hopStart,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	WantAck   bool     `json:"wantAck,omitempty"`
	Decoded   *Payload `json:"decoded,omitempty"`
	Encrypted []byte   `json:"encrypted,omitempty"`
}

// Payload is the decoded portion of a packet.
type Payload struct {
	Portnum   string     `json:"portnum"`
	Text      string     `json:"text,omitempty"`
	Position  *Position  `json:"position,omitempty"`
	User      *User      `json:"user,omitempty"`
	Telemetry *Telemetry `json:"telemetry,omitempty"`
}

// Position is a POSITION_APP payload.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  int     `json:"altitude,omitempty"`
}

// User is a NODEINFO_APP payload.
type User struct {
	ID        string `json:"id,omitempty"`
	LongName  string `json:"longName,omitempty"`
	ShortName string `json:"shortName,omitempty"`
	HwModel   string `json:"hwModel,omitempty"`
}

// Telemetry is a TELEMETRY_APP payload.
type Telemetry struct {
	Device      *DeviceMetrics      `json:"deviceMetrics,omitempty"`
	Environment *EnvironmentMetrics `json:"environmentMetrics,omitempty"`
}

// DeviceMetrics carries device health readings.
type DeviceMetrics struct {
	BatteryLevel *float64 `json:"batteryLevel,omitempty"`
	Voltage      *float64 `json:"voltage,omitempty"`
}

// EnvironmentMetrics carries environment sensor readings.
type EnvironmentMetrics struct {
	Temperature *float64 `json:"temperature,omitempty"`
}

// The methods below implement the filter evaluator's Record interface.

// GetFrom returns the raw source node identifier, or "" when absent.
func (p *Packet) GetFrom() string { return p.From }

// GetTo returns the raw destination node identifier, or "" when absent.
func (p *Packet) GetTo() string { return p.To }

// GetPortName returns the canonical port name of the decoded payload,
// or "" when nothing was decoded.
func (p *Packet) GetPortName() string {
	if p.Decoded == nil {
		return ""
	}
	return p.Decoded.Portnum
}

// GetHopLimit returns the remaining hop count, defaulting to 0 when the
// field is absent. This matches the display convention.
func (p *Packet) GetHopLimit() int {
	if p.HopLimit == nil {
		return 0
	}
	return *p.HopLimit
}

// GetPriority returns the scheduling priority, or "" when absent.
func (p *Packet) GetPriority() string { return p.Priority }

// GetWantAck reports whether the sender requested an acknowledgment.
func (p *Packet) GetWantAck() bool { return p.WantAck }

// IsEncrypted reports whether the payload was not decoded. A packet
// with no decoded payload at all counts as encrypted.
func (p *Packet) IsEncrypted() bool { return p.Decoded == nil }
