package device

import (
	"fmt"
	"math"

	"github.com/edp1096/circuit-sim/pkg/matrix"
)

// Diode models I = I0 * exp(M * (V - V0)). It owns two extra unknowns:
// its branch current and an internal node sitting between the anode and
// the nonlinear drop, both observable after a solve.
//
// The linearization about the bias point vBias uses
//
//	g = M * I0 * exp(M * (vBias - V0))
//
// with rows
//
//	g*(V_int - V(n2)) - I = 0
//	V(n1) - V_int        = vBias - 1/M
//
// During AC sweep the same rows are stamped with g frozen at the DC
// operating point and a zero offset, which reduces the diode to its
// small-signal conductance.
type Diode struct {
	BaseDevice
	I0 float64
	M  float64
	V0 float64

	i0 float64
	m  float64
	v0 float64

	vBias       float64
	internalIdx int
	branchIdx   int
}

var _ NonLinear = (*Diode)(nil)

func NewDiode(name string, nodeNames []string, i0, m, v0 float64) *Diode {
	d := &Diode{
		BaseDevice: newBaseDevice(name, nodeNames, 0),
		I0:         i0,
		M:          m,
		V0:         v0,
		i0:         i0,
		m:          m,
		v0:         v0,
	}
	return d
}

func (d *Diode) GetType() string { return "D" }

func (d *Diode) InternalIndex() int       { return d.internalIdx }
func (d *Diode) SetInternalIndex(idx int) { d.internalIdx = idx }
func (d *Diode) BranchIndex() int         { return d.branchIdx }
func (d *Diode) SetBranchIndex(idx int)   { d.branchIdx = idx }

func (d *Diode) Acknowledge() {
	if !d.dirty {
		return
	}
	d.i0 = d.I0
	d.m = d.M
	d.v0 = d.V0
	d.dirty = false
}

func (d *Diode) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(d.Nodes) != 2 {
		return fmt.Errorf("diode %s: requires exactly 2 nodes", d.Name)
	}

	n1, n2 := d.Nodes[0], d.Nodes[1]
	iIdx, vInt := d.branchIdx, d.internalIdx

	iBias := d.i0 * math.Exp(d.m*(d.vBias-d.v0))
	g := d.m * iBias
	vOffset := d.vBias - 1.0/d.m

	if status.Mode == ACAnalysis {
		if n1 != 0 {
			m.AddComplexElement(n1, iIdx, 1, 0)
			m.AddComplexElement(iIdx, n1, 1, 0)
		}
		if n2 != 0 {
			m.AddComplexElement(n2, iIdx, -1, 0)
			m.AddComplexElement(vInt, n2, -g, 0)
		}
		m.AddComplexElement(vInt, iIdx, -1, 0)
		m.AddComplexElement(vInt, vInt, g, 0)
		m.AddComplexElement(iIdx, vInt, -1, 0)
		return nil
	}

	if n1 != 0 {
		m.AddElement(n1, iIdx, 1)
		m.AddElement(iIdx, n1, 1)
	}
	if n2 != 0 {
		m.AddElement(n2, iIdx, -1)
		m.AddElement(vInt, n2, -g)
	}

	// Current balance at the internal node.
	m.AddElement(vInt, iIdx, -1)
	m.AddElement(vInt, vInt, g)

	// Offset between the anode and the internal node.
	m.AddElement(iIdx, vInt, -1)
	m.AddRHS(iIdx, vOffset)

	return nil
}

// UpdateBias moves the linearization point toward the latest solution,
// limited to 0.3 V per Newton iteration to keep the exponential from
// overflowing on large voltage excursions.
func (d *Diode) UpdateBias(solution []float64) {
	v1, v2 := 0.0, 0.0
	if d.Nodes[0] != 0 {
		v1 = solution[d.Nodes[0]]
	}
	if d.Nodes[1] != 0 {
		v2 = solution[d.Nodes[1]]
	}
	voltage := v1 - v2

	switch {
	case voltage > d.vBias+0.3:
		d.vBias += 0.3
	case voltage < d.vBias-0.3:
		d.vBias -= 0.3
	default:
		d.vBias = voltage
	}
}

// BiasError reports how far the linearized branch current is from the
// device equation at the given solution.
func (d *Diode) BiasError(solution []float64) float64 {
	v1, v2 := 0.0, 0.0
	if d.Nodes[0] != 0 {
		v1 = solution[d.Nodes[0]]
	}
	if d.Nodes[1] != 0 {
		v2 = solution[d.Nodes[1]]
	}
	want := d.i0 * math.Exp(d.m*(v1-v2-d.v0))
	return want - solution[d.branchIdx]
}
