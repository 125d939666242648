package serial

import (
	"fmt"
	"sort"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial port and, for USB bridges, the adapter behind it.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
	Product      string
}

// Bridge returns a short name for well-known ESP32 USB-UART bridges.
func (p PortInfo) Bridge() string {
	if !p.IsUSB {
		return ""
	}
	switch p.VID + ":" + p.PID {
	case "10C4:EA60":
		return "CP210x"
	case "1A86:7523":
		return "CH340"
	case "1A86:55D4":
		return "CH9102"
	case "0403:6001", "0403:6010", "0403:6015":
		return "FTDI"
	case "303A:1001":
		return "ESP32 USB-JTAG"
	}
	return "USB"
}

// String renders the port for listings.
func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	s := fmt.Sprintf("%s [%s %s:%s]", p.Name, p.Bridge(), p.VID, p.PID)
	if p.SerialNumber != "" {
		s += " serial=" + p.SerialNumber
	}
	return s
}

// ListPorts returns available serial ports with USB details when the
// platform exposes them.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil || len(details) == 0 {
		// Fall back to plain names where detailed enumeration is unsupported.
		names, nerr := serial.GetPortsList()
		if nerr != nil {
			if err != nil {
				return nil, fmt.Errorf("failed to list ports: %w", err)
			}
			return nil, fmt.Errorf("failed to list ports: %w", nerr)
		}
		ports := make([]PortInfo, 0, len(names))
		for _, n := range names {
			ports = append(ports, PortInfo{Name: n})
		}
		sortPorts(ports)
		return ports, nil
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          normalizeID(d.VID),
			PID:          normalizeID(d.PID),
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sortPorts(ports)
	return ports, nil
}

// FilterUSB keeps ports backed by a USB adapter, where dev boards appear.
func FilterUSB(ports []PortInfo) []PortInfo {
	var out []PortInfo
	for _, p := range ports {
		if p.IsUSB {
			out = append(out, p)
		}
	}
	return out
}

func sortPorts(ports []PortInfo) {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
}

func normalizeID(id string) string {
	b := []byte(id)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}
