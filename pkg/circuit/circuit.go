package circuit

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/edp1096/circuit-sim/pkg/device"
	"github.com/edp1096/circuit-sim/pkg/matrix"
	"github.com/edp1096/circuit-sim/pkg/netlist"
)

type solveState int

const (
	stateUnsolved solveState = iota
	stateDCSolved
	stateTransient
)

// Circuit owns a built netlist and everything one simulation needs:
// the variable table, the device list, the current MNA system, the last
// real solution and the transient history buffers. Structure is fixed
// after BuildFromString; only parameter mutation through
// GetComponentForModification is supported afterwards.
type Circuit struct {
	nodeMap  map[string]int
	varNames []string // 1-based, varNames[0] unused
	varIndex map[string]int
	size     int

	devices   []device.Device
	byName    map[string]device.Device
	nonlinear []device.NonLinear
	reactive  []device.TimeDependent

	matrix   *matrix.CircuitMatrix
	solution []float64 // last real solution, 1-based

	maxIter int
	absTol  float64
	relTol  float64

	state solveState

	t          float64
	timeStep   float64
	probes     []probe
	timeStamps []float64
	series     [][]float64
}

// BuildFromString parses a circuit description and assembles the
// variable table: node voltages first in order of appearance, then one
// branch current per voltage source, inductor and capacitor, then the
// internal node and branch current of each diode.
func BuildFromString(text string) (*Circuit, error) {
	elements, err := netlist.Parse(text)
	if err != nil {
		return nil, err
	}

	c := &Circuit{
		nodeMap:  make(map[string]int),
		varIndex: make(map[string]int),
		byName:   make(map[string]device.Device),
		maxIter:  100,
		absTol:   1e-9,
		relTol:   1e-6,
	}
	c.varNames = append(c.varNames, "")

	for _, elem := range elements {
		for _, node := range elem.Nodes {
			c.internNode(node)
		}
	}

	for _, elem := range elements {
		dev, err := newDevice(elem)
		if err != nil {
			return nil, err
		}

		nodes := make([]int, len(elem.Nodes))
		for i, node := range elem.Nodes {
			nodes[i] = c.nodeIndex(node)
		}
		dev.SetNodes(nodes)

		c.devices = append(c.devices, dev)
		c.byName[dev.GetName()] = dev

		if nl, ok := dev.(device.NonLinear); ok {
			c.nonlinear = append(c.nonlinear, nl)
		}
		if td, ok := dev.(device.TimeDependent); ok {
			c.reactive = append(c.reactive, td)
		}
	}

	c.assignAuxiliaries()

	return c, nil
}

func (c *Circuit) internNode(name string) {
	if name == "gnd" || name == "0" {
		return
	}
	if _, exists := c.nodeMap[name]; exists {
		return
	}
	idx := len(c.nodeMap) + 1
	c.nodeMap[name] = idx
	c.varNames = append(c.varNames, name)
	c.varIndex[name] = idx
}

func (c *Circuit) nodeIndex(name string) int {
	if name == "gnd" || name == "0" {
		return 0
	}
	return c.nodeMap[name]
}

// assignAuxiliaries hands out the branch and internal-node indices past
// the node block: voltage sources, then inductors, then capacitors,
// then diodes, each in insertion order.
func (c *Circuit) assignAuxiliaries() {
	next := len(c.nodeMap) + 1

	addVar := func(name string) int {
		idx := next
		next++
		c.varNames = append(c.varNames, name)
		c.varIndex[name] = idx
		return idx
	}

	for _, dev := range c.devices {
		if v, ok := dev.(*device.VoltageSource); ok {
			v.SetBranchIndex(addVar(v.Name + ".current"))
		}
	}
	for _, dev := range c.devices {
		if l, ok := dev.(*device.Inductor); ok {
			l.SetBranchIndex(addVar(l.Name + ".current"))
		}
	}
	for _, dev := range c.devices {
		if ca, ok := dev.(*device.Capacitor); ok {
			ca.SetBranchIndex(addVar(ca.Name + ".current"))
		}
	}
	for _, dev := range c.devices {
		if d, ok := dev.(*device.Diode); ok {
			d.SetInternalIndex(addVar(d.Name + ".internal_node"))
			d.SetBranchIndex(addVar(d.Name + ".current"))
		}
	}

	c.size = next - 1
}

func newDevice(elem netlist.Element) (device.Device, error) {
	switch elem.Kind {
	case "R":
		if elem.Value <= 0 {
			return nil, fmt.Errorf("resistor %s: resistance must be positive, got %g: %w",
				elem.Name, elem.Value, ErrInvalidParameter)
		}
		return device.NewResistor(elem.Name, elem.Nodes, elem.Value), nil

	case "C":
		if elem.Value <= 0 {
			return nil, fmt.Errorf("capacitor %s: capacitance must be positive, got %g: %w",
				elem.Name, elem.Value, ErrInvalidParameter)
		}
		return device.NewCapacitor(elem.Name, elem.Nodes, elem.Value,
			elem.Params["v0"], elem.Params["i0"]), nil

	case "L":
		if elem.Value <= 0 {
			return nil, fmt.Errorf("inductor %s: inductance must be positive, got %g: %w",
				elem.Name, elem.Value, ErrInvalidParameter)
		}
		return device.NewInductor(elem.Name, elem.Nodes, elem.Value,
			elem.Params["v0"], elem.Params["i0"]), nil

	case "VG":
		return device.NewVoltageSource(elem.Name, elem.Nodes, elem.Value), nil

	case "D":
		if elem.Params["m"] <= 0 {
			return nil, fmt.Errorf("diode %s: m must be positive, got %g: %w",
				elem.Name, elem.Params["m"], ErrInvalidParameter)
		}
		if elem.Params["i0"] <= 0 {
			return nil, fmt.Errorf("diode %s: i0 must be positive, got %g: %w",
				elem.Name, elem.Params["i0"], ErrInvalidParameter)
		}
		return device.NewDiode(elem.Name, elem.Nodes,
			elem.Params["i0"], elem.Params["m"], elem.Params["v0"]), nil
	}

	return nil, fmt.Errorf("unsupported component kind %q", elem.Kind)
}

// Size returns the number of unknowns in the MNA system.
func (c *Circuit) Size() int { return c.size }

// VariableNames lists every unknown in index order.
func (c *Circuit) VariableNames() []string {
	return slices.Clone(c.varNames[1:])
}

// GetVariable reads one scalar out of the last real solution. It
// resolves node names, "comp.current", "comp.internal_node" and
// "comp.voltage".
func (c *Circuit) GetVariable(name string) (float64, error) {
	if c.solution == nil {
		return 0, fmt.Errorf("get %q: no solution available, run an analysis first", name)
	}
	p, err := c.resolveProbe(name)
	if err != nil {
		return 0, err
	}
	return p.value(c.solution), nil
}

// GetComponentForModification looks up a component and raises its dirty
// flag. The returned handle is meant for a single mutation: the flag
// set here is what makes the engine re-read the component's value on
// the next solve, so every mutation needs a fresh call.
func (c *Circuit) GetComponentForModification(name string) (device.Device, error) {
	dev, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", name, ErrUnknownVariable)
	}
	dev.MarkDirty()
	return dev, nil
}

// stampSystem rebuilds the current MNA system from scratch. Components
// acknowledge pending mutations as they are read, which is the only
// point where a mutated value takes effect.
func (c *Circuit) stampSystem(status *device.CircuitStatus) error {
	c.matrix.Clear()
	for _, dev := range c.devices {
		dev.Acknowledge()
		if err := dev.Stamp(c.matrix, status); err != nil {
			return fmt.Errorf("stamping %s: %w", dev.GetName(), err)
		}
	}
	return nil
}

func (c *Circuit) captureSolution() {
	c.solution = slices.Clone(c.matrix.Solution())
}

// PrintEquations renders the post-stamp linear system produced by the
// most recent analysis.
func (c *Circuit) PrintEquations() { c.WriteEquations(os.Stdout) }

func (c *Circuit) WriteEquations(w io.Writer) {
	if c.matrix == nil {
		fmt.Fprintln(w, "Nothing to print.")
		return
	}

	for row := 1; row <= c.size; row++ {
		first := true
		for col := 1; col <= c.size; col++ {
			coeff := c.matrix.AtComplex(row, col)
			if coeff == 0 {
				continue
			}
			if !first {
				fmt.Fprint(w, "+ ")
			}
			if c.matrix.IsComplex() && imag(coeff) != 0 {
				fmt.Fprintf(w, "(%g%+gj)(%s) ", real(coeff), imag(coeff), c.varNames[col])
			} else {
				fmt.Fprintf(w, "(%g)(%s) ", real(coeff), c.varNames[col])
			}
			first = false
		}
		rhs := c.matrix.RHSAtComplex(row)
		if c.matrix.IsComplex() && imag(rhs) != 0 {
			fmt.Fprintf(w, "= %g%+gj\n", real(rhs), imag(rhs))
		} else {
			fmt.Fprintf(w, "= %g\n", real(rhs))
		}
	}
}

// PrintAllVariables lists every unknown of the most recent analysis
// with its solved value.
func (c *Circuit) PrintAllVariables() { c.WriteAllVariables(os.Stdout) }

func (c *Circuit) WriteAllVariables(w io.Writer) {
	if c.matrix == nil {
		fmt.Fprintln(w, "Nothing to print.")
		return
	}

	if c.matrix.IsComplex() {
		x := c.matrix.ComplexSolution()
		for i := 1; i <= c.size; i++ {
			fmt.Fprintf(w, "%s = %g%+gj\n", c.varNames[i], real(x[i]), imag(x[i]))
		}
		return
	}

	x := c.matrix.Solution()
	for i := 1; i <= c.size; i++ {
		fmt.Fprintf(w, "%s = %g\n", c.varNames[i], x[i])
	}
}
