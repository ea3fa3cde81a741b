package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToNodeNum(t *testing.T) {
	tests := []struct {
		input    string
		expected uint32
		ok       bool
	}{
		{"!a4e1f2b3", 0xa4e1f2b3, true},
		{"!A4E1F2B3", 0xa4e1f2b3, true},
		{"!ffffffff", Broadcast, true},
		{"!0000000a", 10, true},
		{"2766271155", 0xa4e1f2b3, true},
		{"0", 0, true},
		// All-decimal strings parse as decimal, not hex.
		{"1234", 1234, true},
		{"deadbeef", 0xdeadbeef, true},
		{"  !a4e1f2b3  ", 0xa4e1f2b3, true},
		{"", 0, false},
		{"   ", 0, false},
		{"!", 0, false},
		{"!a4e1f2b3ff", 0, false}, // more than 8 hex digits
		{"Alice Node", 0, false},
		{"-1", 0, false},
		{"!xyz", 0, false},
	}

	for _, tt := range tests {
		num, ok := ToNodeNum(tt.input)
		assert.Equal(t, tt.ok, ok, "ok for %q", tt.input)
		if tt.ok {
			assert.Equal(t, tt.expected, num, "value for %q", tt.input)
		}
	}
}

func TestUserID(t *testing.T) {
	assert.Equal(t, "!a4e1f2b3", UserID(0xa4e1f2b3))
	assert.Equal(t, "!0000000a", UserID(10))
	assert.Equal(t, "!ffffffff", UserID(Broadcast))
}

func TestUserIDRoundTrip(t *testing.T) {
	for _, num := range []uint32{0, 1, 0xa4e1f2b3, Broadcast} {
		got, ok := ToNodeNum(UserID(num))
		assert.True(t, ok)
		assert.Equal(t, num, got)
	}
}

func TestPortName(t *testing.T) {
	assert.Equal(t, PortText, PortName("text"))
	assert.Equal(t, PortText, PortName("TEXT"))
	assert.Equal(t, PortPosition, PortName("position"))
	assert.Equal(t, PortNodeInfo, PortName("nodeinfo"))
	assert.Equal(t, PortTelemetry, PortName("telemetry"))
	assert.Equal(t, PortAdmin, PortName("admin"))
	assert.Equal(t, PortRouting, PortName("routing"))
	// Full names and unknown names pass through unchanged.
	assert.Equal(t, PortText, PortName("TEXT_MESSAGE_APP"))
	assert.Equal(t, "NO_SUCH_APP", PortName("NO_SUCH_APP"))
}
