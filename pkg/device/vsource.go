package device

import (
	"fmt"

	"github.com/edp1096/circuit-sim/pkg/matrix"
)

// VoltageSource is the independent constant source the netlist spells
// "VG", including the implicit one a "<node> = <value>v" line creates.
// Positive branch current flows out of the first terminal.
type VoltageSource struct {
	BaseDevice
	branchIdx int
}

func NewVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return &VoltageSource{BaseDevice: newBaseDevice(name, nodeNames, value)}
}

func (v *VoltageSource) GetType() string { return "VG" }

func (v *VoltageSource) BranchIndex() int       { return v.branchIdx }
func (v *VoltageSource) SetBranchIndex(idx int) { v.branchIdx = idx }

func (v *VoltageSource) Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(v.Nodes) != 2 {
		return fmt.Errorf("voltage source %s: requires exactly 2 nodes", v.Name)
	}

	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx

	if status.Mode == ACAnalysis {
		if n1 != 0 {
			m.AddComplexElement(n1, bIdx, -1, 0)
			m.AddComplexElement(bIdx, n1, 1, 0)
		}
		if n2 != 0 {
			m.AddComplexElement(n2, bIdx, 1, 0)
			m.AddComplexElement(bIdx, n2, -1, 0)
		}
		m.AddComplexRHS(bIdx, v.value, 0)
		return nil
	}

	// KCL contributions, then the V(n1) - V(n2) = value row.
	if n1 != 0 {
		m.AddElement(n1, bIdx, -1)
		m.AddElement(bIdx, n1, 1)
	}
	if n2 != 0 {
		m.AddElement(n2, bIdx, 1)
		m.AddElement(bIdx, n2, -1)
	}
	m.AddRHS(bIdx, v.value)

	return nil
}
