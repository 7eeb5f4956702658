package device

import (
	"fmt"

	"github.com/edp1096/circuit-sim/pkg/matrix"
)

// Capacitor keeps a branch-current unknown alongside its companion
// state. The constitutive row is backward Euler,
//
//	V(n1) - V(n2) - (h/C)*I = V_prev
//
// which at h = 0 pins the terminal voltage to the initial condition, so
// the transient preparation solve stays well posed.
type Capacitor struct {
	BaseDevice
	V0        float64 // initial voltage
	I0        float64 // initial current
	vPrev     float64
	iPrev     float64
	branchIdx int
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value, v0, i0 float64) *Capacitor {
	return &Capacitor{
		BaseDevice: newBaseDevice(name, nodeNames, value),
		V0:         v0,
		I0:         i0,
		vPrev:      v0,
		iPrev:      i0,
	}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) BranchIndex() int       { return c.branchIdx }
func (c *Capacitor) SetBranchIndex(idx int) { c.branchIdx = idx }

func (c *Capacitor) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(c.Nodes) != 2 {
		return fmt.Errorf("capacitor %s: requires exactly 2 nodes", c.Name)
	}

	n1, n2 := c.Nodes[0], c.Nodes[1]
	bIdx := c.branchIdx

	switch status.Mode {
	case ACAnalysis:
		// jwC*(V1 - V2) - I = 0
		cw := c.value * status.Omega
		if n1 != 0 {
			m.AddComplexElement(n1, bIdx, 1, 0)
			m.AddComplexElement(bIdx, n1, 0, cw)
		}
		if n2 != 0 {
			m.AddComplexElement(n2, bIdx, -1, 0)
			m.AddComplexElement(bIdx, n2, 0, -cw)
		}
		m.AddComplexElement(bIdx, bIdx, -1, 0)

	case TransientAnalysis:
		hOverC := status.TimeStep / c.value
		if n1 != 0 {
			m.AddElement(n1, bIdx, 1)
			m.AddElement(bIdx, n1, 1)
		}
		if n2 != 0 {
			m.AddElement(n2, bIdx, -1)
			m.AddElement(bIdx, n2, -1)
		}
		m.AddElement(bIdx, bIdx, -hOverC)
		m.AddRHS(bIdx, c.vPrev)

	default:
		// Open circuit in DC: the branch current is pinned to zero.
		if n1 != 0 {
			m.AddElement(n1, bIdx, 1)
		}
		if n2 != 0 {
			m.AddElement(n2, bIdx, -1)
		}
		m.AddElement(bIdx, bIdx, 1)
	}

	return nil
}

func (c *Capacitor) ResetState() {
	c.vPrev = c.V0
	c.iPrev = c.I0
}

func (c *Capacitor) UpdateState(solution []float64) {
	v1, v2 := 0.0, 0.0
	if c.Nodes[0] != 0 {
		v1 = solution[c.Nodes[0]]
	}
	if c.Nodes[1] != 0 {
		v2 = solution[c.Nodes[1]]
	}
	c.vPrev = v1 - v2
	c.iPrev = solution[c.branchIdx]
}
