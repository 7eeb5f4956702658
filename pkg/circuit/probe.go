package circuit

import (
	"fmt"
	"strings"

	"github.com/edp1096/circuit-sim/pkg/device"
)

type probeKind int

const (
	probeVarIndex probeKind = iota
	probeDeviceCurrent // derived: terminal voltage difference over resistance
	probeDeviceVoltage // derived: V(n1) - V(n2)
)

// probe is a resolved observable: either a direct index into the
// solution vector or a derived quantity computed from one device.
// Resolution happens once, reads are just indexing.
type probe struct {
	name  string
	kind  probeKind
	index int
	dev   device.Device
}

func (c *Circuit) resolveProbe(name string) (probe, error) {
	if name == "gnd" || name == "0" {
		return probe{name: name, kind: probeVarIndex, index: 0}, nil
	}
	if idx, ok := c.varIndex[name]; ok {
		return probe{name: name, kind: probeVarIndex, index: idx}, nil
	}

	if comp, field, found := strings.Cut(name, "."); found {
		dev, ok := c.byName[comp]
		if ok {
			switch field {
			case "current":
				if dev.GetType() == "R" {
					return probe{name: name, kind: probeDeviceCurrent, dev: dev}, nil
				}
			case "voltage":
				return probe{name: name, kind: probeDeviceVoltage, dev: dev}, nil
			}
		}
	}

	return probe{}, fmt.Errorf("%q: %w", name, ErrUnknownVariable)
}

func terminalDiff[T float64 | complex128](dev device.Device, x []T) T {
	nodes := dev.GetNodes()
	var v1, v2 T
	if nodes[0] != 0 {
		v1 = x[nodes[0]]
	}
	if nodes[1] != 0 {
		v2 = x[nodes[1]]
	}
	return v1 - v2
}

func (p probe) value(x []float64) float64 {
	switch p.kind {
	case probeDeviceCurrent:
		return terminalDiff(p.dev, x) / p.dev.GetValue()
	case probeDeviceVoltage:
		return terminalDiff(p.dev, x)
	default:
		return x[p.index]
	}
}

func (p probe) complexValue(x []complex128) complex128 {
	switch p.kind {
	case probeDeviceCurrent:
		return terminalDiff(p.dev, x) / complex(p.dev.GetValue(), 0)
	case probeDeviceVoltage:
		return terminalDiff(p.dev, x)
	default:
		return x[p.index]
	}
}
