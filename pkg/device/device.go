package device

import (
	"github.com/edp1096/circuit-sim/pkg/matrix"
)

type AnalysisMode int

const (
	DCAnalysis AnalysisMode = iota
	TransientAnalysis
	ACAnalysis
)

// CircuitStatus carries the per-solve context every stamp needs.
// TimeStep is zero during the transient preparation solve, where the
// reactive rows degenerate to their initial-condition constraints.
type CircuitStatus struct {
	Mode     AnalysisMode
	Time     float64
	TimeStep float64
	Omega    float64 // 2*pi*f during AC sweep
}

type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	SetNodes(nodes []int)
	GetValue() float64
	SetValue(value float64)
	MarkDirty()
	Acknowledge()
	Stamp(m matrix.DeviceMatrix, status *CircuitStatus) error
}

// TimeDependent devices carry companion-model state between transient steps.
type TimeDependent interface {
	ResetState()
	UpdateState(solution []float64)
}

// NonLinear devices are re-linearized about the latest solution between
// Newton iterations.
type NonLinear interface {
	UpdateBias(solution []float64)
}

// BaseDevice holds what every component shares. Value is the
// caller-facing number a mutation handle writes to; value is the number
// the stamps actually use. The two are reconciled by Acknowledge, which
// the builder calls as it reads each component at the start of a solve,
// and only when the dirty flag was raised by a mutation handle.
type BaseDevice struct {
	Name      string
	NodeNames []string
	Nodes     []int
	Value     float64
	value     float64
	dirty     bool
}

func (d *BaseDevice) GetName() string        { return d.Name }
func (d *BaseDevice) GetNodeNames() []string { return d.NodeNames }
func (d *BaseDevice) GetNodes() []int        { return d.Nodes }
func (d *BaseDevice) SetNodes(nodes []int)   { d.Nodes = nodes }
func (d *BaseDevice) GetValue() float64      { return d.value }
func (d *BaseDevice) SetValue(value float64) { d.Value = value }
func (d *BaseDevice) MarkDirty()             { d.dirty = true }

func (d *BaseDevice) Acknowledge() {
	if d.dirty {
		d.value = d.Value
		d.dirty = false
	}
}

func newBaseDevice(name string, nodeNames []string, value float64) BaseDevice {
	return BaseDevice{
		Name:      name,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
		Value:     value,
		value:     value,
	}
}
