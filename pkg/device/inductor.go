package device

import (
	"fmt"

	"github.com/edp1096/circuit-sim/pkg/matrix"
)

// Inductor carries its branch current as an MNA unknown. The transient
// row is backward Euler,
//
//	(h/L)*(V(n1) - V(n2)) - I = -I_prev
//
// degenerating to I = I_prev at h = 0, and the DC row is the short
// circuit V(n1) = V(n2).
type Inductor struct {
	BaseDevice
	V0        float64 // initial voltage
	I0        float64 // initial current
	vPrev     float64
	iPrev     float64
	branchIdx int
}

var _ TimeDependent = (*Inductor)(nil)

func NewInductor(name string, nodeNames []string, value, v0, i0 float64) *Inductor {
	return &Inductor{
		BaseDevice: newBaseDevice(name, nodeNames, value),
		V0:         v0,
		I0:         i0,
		vPrev:      v0,
		iPrev:      i0,
	}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) BranchIndex() int       { return l.branchIdx }
func (l *Inductor) SetBranchIndex(idx int) { l.branchIdx = idx }

func (l *Inductor) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(l.Nodes) != 2 {
		return fmt.Errorf("inductor %s: requires exactly 2 nodes", l.Name)
	}

	n1, n2 := l.Nodes[0], l.Nodes[1]
	bIdx := l.branchIdx

	switch status.Mode {
	case ACAnalysis:
		// (1/jwL)*(V1 - V2) - I = 0, and 1/j = -j
		oneOverLw := 1.0 / (l.value * status.Omega)
		if n1 != 0 {
			m.AddComplexElement(n1, bIdx, 1, 0)
			m.AddComplexElement(bIdx, n1, 0, -oneOverLw)
		}
		if n2 != 0 {
			m.AddComplexElement(n2, bIdx, -1, 0)
			m.AddComplexElement(bIdx, n2, 0, oneOverLw)
		}
		m.AddComplexElement(bIdx, bIdx, -1, 0)

	case TransientAnalysis:
		hOverL := status.TimeStep / l.value
		if n1 != 0 {
			m.AddElement(n1, bIdx, 1)
			m.AddElement(bIdx, n1, hOverL)
		}
		if n2 != 0 {
			m.AddElement(n2, bIdx, -1)
			m.AddElement(bIdx, n2, -hOverL)
		}
		m.AddElement(bIdx, bIdx, -1)
		m.AddRHS(bIdx, -l.iPrev)

	default:
		// Short circuit in DC.
		if n1 != 0 {
			m.AddElement(n1, bIdx, 1)
			m.AddElement(bIdx, n1, 1)
		}
		if n2 != 0 {
			m.AddElement(n2, bIdx, -1)
			m.AddElement(bIdx, n2, -1)
		}
	}

	return nil
}

func (l *Inductor) ResetState() {
	l.vPrev = l.V0
	l.iPrev = l.I0
}

func (l *Inductor) UpdateState(solution []float64) {
	v1, v2 := 0.0, 0.0
	if l.Nodes[0] != 0 {
		v1 = solution[l.Nodes[0]]
	}
	if l.Nodes[1] != 0 {
		v2 = solution[l.Nodes[1]]
	}
	l.vPrev = v1 - v2
	l.iPrev = solution[l.branchIdx]
}
