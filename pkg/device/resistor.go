package device

import (
	"fmt"

	"github.com/edp1096/circuit-sim/pkg/matrix"
)

type Resistor struct {
	BaseDevice
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}

	n1, n2 := r.Nodes[0], r.Nodes[1]
	g := 1.0 / r.value

	switch status.Mode {
	case ACAnalysis:
		if n1 != 0 {
			m.AddComplexElement(n1, n1, g, 0)
			if n2 != 0 {
				m.AddComplexElement(n1, n2, -g, 0)
			}
		}
		if n2 != 0 {
			if n1 != 0 {
				m.AddComplexElement(n2, n1, -g, 0)
			}
			m.AddComplexElement(n2, n2, g, 0)
		}

	default:
		if n1 != 0 {
			m.AddElement(n1, n1, g)
			if n2 != 0 {
				m.AddElement(n1, n2, -g)
			}
		}
		if n2 != 0 {
			if n1 != 0 {
				m.AddElement(n2, n1, -g)
			}
			m.AddElement(n2, n2, g)
		}
	}

	return nil
}
