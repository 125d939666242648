package serial

import (
	"testing"
)

func TestPortInfo_Bridge(t *testing.T) {
	tests := []struct {
		port     PortInfo
		expected string
	}{
		{PortInfo{Name: "/dev/ttyS0"}, ""},
		{PortInfo{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10C4", PID: "EA60"}, "CP210x"},
		{PortInfo{Name: "/dev/ttyUSB0", IsUSB: true, VID: "1A86", PID: "7523"}, "CH340"},
		{PortInfo{Name: "/dev/ttyACM0", IsUSB: true, VID: "303A", PID: "1001"}, "ESP32 USB-JTAG"},
		{PortInfo{Name: "/dev/ttyACM1", IsUSB: true, VID: "1234", PID: "5678"}, "USB"},
	}

	for _, tc := range tests {
		if got := tc.port.Bridge(); got != tc.expected {
			t.Errorf("Bridge(%s:%s) = %q, want %q", tc.port.VID, tc.port.PID, got, tc.expected)
		}
	}
}

func TestPortInfo_String(t *testing.T) {
	p := PortInfo{Name: "/dev/ttyUSB0", IsUSB: true, VID: "10C4", PID: "EA60", SerialNumber: "0001"}
	expected := "/dev/ttyUSB0 [CP210x 10C4:EA60] serial=0001"
	if got := p.String(); got != expected {
		t.Errorf("String() = %q, want %q", got, expected)
	}

	plain := PortInfo{Name: "COM3"}
	if got := plain.String(); got != "COM3" {
		t.Errorf("String() = %q, want %q", got, "COM3")
	}
}

func TestFilterUSB(t *testing.T) {
	ports := []PortInfo{
		{Name: "/dev/ttyS0"},
		{Name: "/dev/ttyUSB0", IsUSB: true},
		{Name: "/dev/ttyS1"},
	}
	got := FilterUSB(ports)
	if len(got) != 1 || got[0].Name != "/dev/ttyUSB0" {
		t.Errorf("FilterUSB() = %v, want [/dev/ttyUSB0]", got)
	}
}

func TestNormalizeID(t *testing.T) {
	if got := normalizeID("10c4"); got != "10C4" {
		t.Errorf("normalizeID(10c4) = %q, want 10C4", got)
	}
}
