package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meshcap/meshcap/internal/mesh"
)

// Payload renders the payload portion of a display line. Ports without
// a dedicated rendering get a [PORT] placeholder, or the full decoded
// payload in verbose mode. Undecoded packets report their encrypted
// length.
func (f *Formatter) Payload(p *mesh.Packet) string {
	if p.Decoded == nil {
		return fmt.Sprintf("encrypted length=%d", len(p.Encrypted))
	}

	d := p.Decoded
	switch d.Portnum {
	case "":
		return ""
	case mesh.PortText:
		return "text:" + d.Text
	case mesh.PortPosition:
		pos := d.Position
		if pos == nil {
			pos = &mesh.Position{}
		}
		return fmt.Sprintf("pos:%.4f,%.4f %dm", pos.Latitude, pos.Longitude, pos.Altitude)
	case mesh.PortNodeInfo:
		return userPayload(d.User)
	case mesh.PortTelemetry:
		return telemetryPayload(d.Telemetry)
	default:
		if f.Verbose {
			if raw, err := json.Marshal(d); err == nil {
				return fmt.Sprintf("[%s] %s", d.Portnum, raw)
			}
		}
		return fmt.Sprintf("[%s]", d.Portnum)
	}
}

func userPayload(u *mesh.User) string {
	if u == nil {
		return "user:"
	}
	var name string
	switch {
	case u.LongName != "" && u.ShortName != "":
		name = u.LongName + "/" + u.ShortName
	case u.LongName != "":
		name = u.LongName
	case u.ShortName != "":
		name = u.ShortName
	}
	if u.HwModel != "" {
		return fmt.Sprintf("user:%s %s", name, u.HwModel)
	}
	return "user:" + name
}

func telemetryPayload(t *mesh.Telemetry) string {
	if t == nil {
		return "tele:"
	}

	var parts []string
	if t.Device != nil {
		var bat, volt string
		if t.Device.BatteryLevel != nil {
			bat = fmt.Sprintf("%d%%", int(*t.Device.BatteryLevel))
		}
		if t.Device.Voltage != nil {
			volt = fmt.Sprintf("%.2fV", *t.Device.Voltage)
		}
		switch {
		case bat != "" && volt != "":
			parts = append(parts, fmt.Sprintf("bat=%s/%s", bat, volt))
		case bat != "":
			parts = append(parts, "bat="+bat)
		case volt != "":
			parts = append(parts, "bat="+volt)
		}
	}
	if t.Environment != nil && t.Environment.Temperature != nil {
		parts = append(parts, fmt.Sprintf("temp=%.1f°C", *t.Environment.Temperature))
	}
	return "tele:" + strings.Join(parts, " ")
}
