package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshcap/meshcap/internal/mesh"
)

func testBook() *mesh.NodeBook {
	book := mesh.NewNodeBook()
	book.Learn(0xa1b2c3d4, mesh.NodeInfo{LongName: "Alice Node", ShortName: "ALCE"})
	book.Learn(0xe5f6a7b8, mesh.NodeInfo{LongName: "Bob Node", ShortName: "BOB"})
	return book
}

func TestParseLabelMode(t *testing.T) {
	for _, name := range []string{"", "auto", "named-with-hex"} {
		mode, err := ParseLabelMode(name)
		require.NoError(t, err)
		assert.Equal(t, LabelNamedWithHex, mode, "mode for %q", name)
	}

	mode, err := ParseLabelMode("named-only")
	require.NoError(t, err)
	assert.Equal(t, LabelNamedOnly, mode)

	mode, err = ParseLabelMode("hex-only")
	require.NoError(t, err)
	assert.Equal(t, LabelHexOnly, mode)

	_, err = ParseLabelMode("decimal")
	assert.Error(t, err)
}

func TestLine(t *testing.T) {
	hop := 3
	start := 7
	p := &mesh.Packet{
		From:     "!a1b2c3d4",
		To:       "!e5f6a7b8",
		Channel:  5,
		RxTime:   1697731200, // 2023-10-19 16:00:00 UTC
		RxRssi:   -85,
		RxSnr:    12.5,
		HopLimit: &hop,
		HopStart: &start,
		Decoded: &mesh.Payload{
			Portnum:  mesh.PortPosition,
			Position: &mesh.Position{Latitude: 12.34567, Longitude: 98.76543, Altitude: 150},
		},
	}

	f := &Formatter{Book: testBook(), Mode: LabelNamedWithHex}
	assert.Equal(t,
		"[2023-10-19 16:00:00] Ch:5 -85dBm/12.5dB Hops:4/7 from:Alice Node (!a1b2c3d4) to:Bob Node (!e5f6a7b8) pos:12.3457,98.7654 150m",
		f.Line(p))
}

func TestLineHopFallback(t *testing.T) {
	p := &mesh.Packet{
		From:    "!a1b2c3d4",
		To:      "!ffffffff",
		Decoded: &mesh.Payload{Portnum: mesh.PortText, Text: "hi"},
	}
	f := &Formatter{Mode: LabelHexOnly}
	line := f.Line(p)
	assert.Contains(t, line, "Hop:0")
	assert.NotContains(t, line, "Hops:")
	assert.Contains(t, line, "text:hi")
}

func TestNodeLabelModes(t *testing.T) {
	book := testBook()

	tests := []struct {
		name     string
		f        *Formatter
		id       string
		expected string
	}{
		{"named with hex", &Formatter{Book: book, Mode: LabelNamedWithHex}, "!a1b2c3d4", "Alice Node (!a1b2c3d4)"},
		{"named only", &Formatter{Book: book, Mode: LabelNamedOnly}, "!a1b2c3d4", "Alice Node"},
		{"hex only", &Formatter{Book: book, Mode: LabelHexOnly}, "!a1b2c3d4", "!a1b2c3d4"},
		{"no resolve", &Formatter{Book: book, Mode: LabelNamedWithHex, NoResolve: true}, "!a1b2c3d4", "!a1b2c3d4"},
		{"unnamed node", &Formatter{Book: book, Mode: LabelNamedWithHex}, "!0badf00d", "!0badf00d"},
		{"no book", &Formatter{Mode: LabelNamedWithHex}, "!a1b2c3d4", "!a1b2c3d4"},
		{"decimal spelling", &Formatter{Book: book, Mode: LabelNamedWithHex}, "2712847316", "Alice Node (!a1b2c3d4)"},
		{"foreign name", &Formatter{Book: book, Mode: LabelNamedWithHex}, "Gateway One", "Gateway One"},
		{"absent", &Formatter{Book: book, Mode: LabelNamedWithHex}, "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.f.NodeLabel(tt.id))
		})
	}
}

func TestPayloadRenderings(t *testing.T) {
	bat := 85.0
	volt := 3.92
	temp := 23.5
	f := &Formatter{}

	tests := []struct {
		name     string
		p        *mesh.Packet
		expected string
	}{
		{
			"text",
			&mesh.Packet{Decoded: &mesh.Payload{Portnum: mesh.PortText, Text: "hello mesh"}},
			"text:hello mesh",
		},
		{
			"position",
			&mesh.Packet{Decoded: &mesh.Payload{
				Portnum:  mesh.PortPosition,
				Position: &mesh.Position{Latitude: -33.8688, Longitude: 151.2093, Altitude: 58},
			}},
			"pos:-33.8688,151.2093 58m",
		},
		{
			"nodeinfo",
			&mesh.Packet{Decoded: &mesh.Payload{
				Portnum: mesh.PortNodeInfo,
				User:    &mesh.User{LongName: "Alice Node", ShortName: "ALCE", HwModel: "TBEAM"},
			}},
			"user:Alice Node/ALCE TBEAM",
		},
		{
			"telemetry",
			&mesh.Packet{Decoded: &mesh.Payload{
				Portnum: mesh.PortTelemetry,
				Telemetry: &mesh.Telemetry{
					Device:      &mesh.DeviceMetrics{BatteryLevel: &bat, Voltage: &volt},
					Environment: &mesh.EnvironmentMetrics{Temperature: &temp},
				},
			}},
			"tele:bat=85%/3.92V temp=23.5°C",
		},
		{
			"unformatted port",
			&mesh.Packet{Decoded: &mesh.Payload{Portnum: mesh.PortRouting}},
			"[ROUTING_APP]",
		},
		{
			"encrypted",
			&mesh.Packet{Encrypted: []byte{1, 2, 3, 4, 5}},
			"encrypted length=5",
		},
		{
			"undecoded without bytes",
			&mesh.Packet{},
			"encrypted length=0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, f.Payload(tt.p))
		})
	}
}

func TestPayloadVerbose(t *testing.T) {
	p := &mesh.Packet{Decoded: &mesh.Payload{Portnum: mesh.PortAdmin}}

	f := &Formatter{Verbose: true}
	out := f.Payload(p)
	assert.Contains(t, out, "[ADMIN_APP]")
	assert.Contains(t, out, `"portnum":"ADMIN_APP"`)
}
